package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/whats-middleware/internal/application/dto"
	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/application/messaging"
	"github.com/tu-usuario/whats-middleware/internal/application/webhook"
	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/whatsapp"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// WebhookHandler trata os webhooks do Portal de Licenças e da Cloud API.
type WebhookHandler struct {
	receiver *webhook.Receiver
	tracker  *messaging.StatusTracker
	whatsapp *whatsapp.Client
	log      *logger.Logger
}

// NewWebhookHandler constrói o handler.
func NewWebhookHandler(receiver *webhook.Receiver, tracker *messaging.StatusTracker, wa *whatsapp.Client, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{receiver: receiver, tracker: tracker, whatsapp: wa, log: log}
}

// LicenseCreated POST /api/webhooks/license-created
//
// Responde rápido: o remetente só precisa do ack. Reentregas do mesmo
// portal_id devolvem 200 com status duplicate, sem efeito colateral.
func (h *WebhookHandler) LicenseCreated(c *fiber.Ctx) error {
	var in dto.LicenseCreatedPayload
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	licenseType, err := importer.ResolveLicenseType(in.LicenseType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	outcome, err := h.receiver.Handle(c.UserContext(), webhook.Event{
		PortalID:      in.PortalID,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		LicenseType:   licenseType,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	status := "accepted"
	switch outcome.Kind {
	case webhook.OutcomeDuplicate:
		status = "duplicate"
	case webhook.OutcomeDeferred:
		status = "deferred"
	}
	return c.JSON(dto.LicenseCreatedResponse{Status: status, PortalID: in.PortalID})
}

// VerifyWhatsApp GET /api/webhooks/whatsapp
//
// Handshake de assinatura da Cloud API: ecoa hub.challenge quando o
// verify token confere.
func (h *WebhookHandler) VerifyWhatsApp(c *fiber.Ctx) error {
	challenge, ok := h.whatsapp.VerifyWebhook(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "verify token inválido"})
	}
	return c.SendString(challenge)
}

// WhatsAppStatus POST /api/webhooks/whatsapp
//
// Recibos de status da Cloud API. Recibos de mensagens desconhecidas ou
// fora de ordem são descartados com log; a resposta é sempre 200 para o
// remetente não reapresentar.
func (h *WebhookHandler) WhatsAppStatus(c *fiber.Ctx) error {
	var in dto.WhatsAppNotification
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	applied := 0
	for _, entry := range in.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				if err := h.tracker.ApplyReceipt(st.ID, st.Status); err != nil {
					h.log.Error().Err(err).Str("wamid", st.ID).Msg("falha ao aplicar recibo")
					continue
				}
				applied++
			}
		}
	}
	return c.JSON(fiber.Map{"applied": applied})
}
