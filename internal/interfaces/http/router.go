// Package http expõe a API do middleware sobre Fiber.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/application/messaging"
	"github.com/tu-usuario/whats-middleware/internal/application/webhook"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/whatsapp"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ImportPipeline *importer.Pipeline
	MessageUC      *messaging.MessageUseCase
	Tracker        *messaging.StatusTracker
	Receiver       *webhook.Receiver
	WhatsApp       *whatsapp.Client
	Customers      repository.CustomerRepository
	Companies      repository.CompanyRepository
	Log            *logger.Logger
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Importação de CSV
	csvHandler := NewCSVHandler(deps.ImportPipeline)
	api.Post("/csv/upload", csvHandler.Upload)

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.Customers)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Empresas
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.Companies)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)

	// Mensagens
	messages := api.Group("/messages")
	messageHandler := NewMessageHandler(deps.MessageUC)
	messages.Post("/send-mass", messageHandler.SendMass)
	messages.Get("/", messageHandler.List)

	// Webhooks
	webhooks := api.Group("/webhooks")
	webhookHandler := NewWebhookHandler(deps.Receiver, deps.Tracker, deps.WhatsApp, deps.Log)
	webhooks.Post("/license-created", webhookHandler.LicenseCreated)
	webhooks.Get("/whatsapp", webhookHandler.VerifyWhatsApp)
	webhooks.Post("/whatsapp", webhookHandler.WhatsAppStatus)
}
