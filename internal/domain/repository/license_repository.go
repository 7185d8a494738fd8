package repository

import "github.com/tu-usuario/whats-middleware/internal/domain/entity"

// LicenseRepository define a porta de persistência para License.
type LicenseRepository interface {
	Create(license *entity.License) error
	GetByID(id string) (*entity.License, error)
	FindByPortalID(portalID string) (*entity.License, error)
	ListByCustomer(customerID string) ([]*entity.License, error)
}
