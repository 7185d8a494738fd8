package dto

import (
	"time"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// CustomerDTO cliente na resposta HTTP. Phone sai na forma canônica.
type CustomerDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone"`
	LicenseType string    `json:"license_type"`
	Company     string    `json:"company,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerListResponse listagem paginada de clientes.
type CustomerListResponse struct {
	Customers []CustomerDTO `json:"customers"`
	Page      PageResponse  `json:"page"`
}

// CustomerFromEntity converte a entidade para o DTO de resposta.
func CustomerFromEntity(c *entity.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		LicenseType: string(c.LicenseType),
		Company:     c.Company,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
	}
}
