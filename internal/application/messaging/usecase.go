package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
	"github.com/tu-usuario/whats-middleware/internal/domain/segment"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// MessageUseCase casos de uso de mensageria: boas-vindas segmentadas e
// disparo em massa. Cria o registro da mensagem e entrega ao pool de envio;
// quem fala com o provedor é só o Dispatcher.
type MessageUseCase struct {
	customers  repository.CustomerRepository
	messages   repository.MessageRepository
	dispatcher *Dispatcher
	log        *logger.Logger
}

// NewMessageUseCase constrói o caso de uso.
func NewMessageUseCase(customers repository.CustomerRepository, messages repository.MessageRepository, dispatcher *Dispatcher, log *logger.Logger) *MessageUseCase {
	return &MessageUseCase{
		customers:  customers,
		messages:   messages,
		dispatcher: dispatcher,
		log:        log,
	}
}

// EnqueueWelcome cria e enfileira a mensagem de boas-vindas do segmento do
// cliente. Um tipo de licença não classificável aqui é falha interna.
func (uc *MessageUseCase) EnqueueWelcome(ctx context.Context, customer *entity.Customer) error {
	seg, err := segment.Classify(customer.LicenseType)
	if err != nil {
		return err
	}
	content := segment.Personalize(seg.Welcome, segment.PersonalizationData{
		Name:    customer.Name,
		Company: customer.Company,
	})
	_, err = uc.enqueue(customer, content)
	return err
}

// MassReport resultado de um disparo em massa por segmento.
type MassReport struct {
	LicenseType entity.LicenseType `json:"license_type"`
	Total       int                `json:"total"`
	Enqueued    int                `json:"enqueued"`
	Failed      int                `json:"failed"`
}

// SendMass enfileira a mensagem de massa do segmento para todos os clientes
// ativos do tipo de licença. Cada cliente é independente: uma falha de
// enfileiramento não interrompe os demais.
func (uc *MessageUseCase) SendMass(ctx context.Context, licenseType entity.LicenseType) (*MassReport, error) {
	seg, err := segment.Classify(licenseType)
	if err != nil {
		return nil, err
	}

	customers, err := uc.customers.ListByLicenseType(licenseType, true)
	if err != nil {
		return nil, fmt.Errorf("listar clientes do segmento: %w", err)
	}

	report := &MassReport{LicenseType: licenseType, Total: len(customers)}
	for _, c := range customers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		content := segment.Personalize(seg.Mass, segment.PersonalizationData{Name: c.Name, Company: c.Company})
		if _, err := uc.enqueue(c, content); err != nil {
			report.Failed++
			uc.log.Error().Err(err).Str("customer_id", c.ID).Msg("falha ao enfileirar mensagem de massa")
			continue
		}
		report.Enqueued++
	}

	uc.log.Info().Str("license_type", string(licenseType)).
		Int("total", report.Total).Int("enqueued", report.Enqueued).Int("failed", report.Failed).
		Msg("disparo em massa enfileirado")
	return report, nil
}

// List lista mensagens com paginação.
func (uc *MessageUseCase) List(limit, offset int) ([]*entity.Message, error) {
	return uc.messages.List(limit, offset)
}

func (uc *MessageUseCase) enqueue(customer *entity.Customer, content string) (*entity.Message, error) {
	now := time.Now()
	msg := &entity.Message{
		ID:          uuid.New().String(),
		CustomerID:  customer.ID,
		Phone:       customer.Phone,
		LicenseType: customer.LicenseType,
		Content:     content,
		Type:        entity.MessageText,
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.messages.Create(msg); err != nil {
		return nil, fmt.Errorf("persistir mensagem: %w", err)
	}
	if err := uc.dispatcher.Enqueue(msg); err != nil {
		// Registro criado e pending; um próximo ciclo pode reapresentá-lo.
		return nil, fmt.Errorf("enfileirar mensagem %s: %w", msg.ID, err)
	}
	return msg, nil
}
