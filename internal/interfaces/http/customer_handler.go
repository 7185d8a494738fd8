package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/whats-middleware/internal/application/dto"
	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
)

// CustomerHandler trata as requisições HTTP de clientes.
type CustomerHandler struct {
	customers repository.CustomerRepository
}

// NewCustomerHandler constrói o handler.
func NewCustomerHandler(customers repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	customer, err := h.customers.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: domain.ErrNotFound.Error()})
	}
	return c.JSON(dto.CustomerFromEntity(customer))
}

// List GET /api/customers?limit=20&offset=0&license_type=Start
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()

	var (
		list []*entity.Customer
		err  error
	)
	if lt := entity.LicenseType(c.Query("license_type")); lt != "" {
		if !lt.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "license_type deve ser Start ou Hub"})
		}
		list, err = h.customers.ListByLicenseType(lt, false)
	} else {
		list, err = h.customers.List(page.Limit, page.Offset)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.CustomerListResponse{
		Customers: make([]dto.CustomerDTO, 0, len(list)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}
	for _, cust := range list {
		out.Customers = append(out.Customers, dto.CustomerFromEntity(cust))
	}
	return c.JSON(out)
}
