package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/whats-middleware/internal/application/dto"
	"github.com/tu-usuario/whats-middleware/internal/application/messaging"
	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// MessageHandler trata as requisições HTTP de mensagens.
type MessageHandler struct {
	uc *messaging.MessageUseCase
}

// NewMessageHandler constrói o handler.
func NewMessageHandler(uc *messaging.MessageUseCase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

// SendMass POST /api/messages/send-mass?license_type=Start
func (h *MessageHandler) SendMass(c *fiber.Ctx) error {
	licenseType := entity.LicenseType(c.Query("license_type"))
	if licenseType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "license_type é obrigatório"})
	}

	report, err := h.uc.SendMass(c.UserContext(), licenseType)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSegment) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_SEGMENT", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(report)
}

// List GET /api/messages?limit=20&offset=0
func (h *MessageHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()

	list, err := h.uc.List(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.MessageListResponse{
		Messages: make([]dto.MessageDTO, 0, len(list)),
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range list {
		out.Messages = append(out.Messages, dto.MessageFromEntity(m))
	}
	return c.JSON(out)
}
