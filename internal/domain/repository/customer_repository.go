package repository

import "github.com/tu-usuario/whats-middleware/internal/domain/entity"

// CustomerRepository define a porta de persistência para Customer.
// Sem garantias transacionais entre registros; cada operação é independente.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	FindByPhone(phone string) (*entity.Customer, error)
	FindByEmail(email string) (*entity.Customer, error)
	ListByLicenseType(licenseType entity.LicenseType, onlyActive bool) ([]*entity.Customer, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
}
