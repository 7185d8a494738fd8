package entity

import "time"

// Estados possíveis de uma licença.
const (
	LicenseStatusActive    = "active"
	LicenseStatusInactive  = "inactive"
	LicenseStatusCancelled = "cancelled"
)

// License registra uma licença criada pelo Portal de Licenças para um cliente.
// PortalID é a chave de junção com o sistema externo e também a chave de
// dedup do webhook license-created.
type License struct {
	ID          string
	CustomerID  string
	LicenseType LicenseType
	Status      string
	PortalID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
