package dto

import (
	"time"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// CreateCompanyRequest corpo do POST /api/companies.
type CreateCompanyRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CompanyDTO empresa na resposta HTTP.
type CompanyDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyFromEntity converte a entidade para o DTO de resposta.
func CompanyFromEntity(c *entity.Company) CompanyDTO {
	return CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
