package repository

import "github.com/tu-usuario/whats-middleware/internal/domain/entity"

// CompanyRepository define a porta de persistência para Company.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	FindByName(name string) (*entity.Company, error)
	List(limit, offset int) ([]*entity.Company, error)
}
