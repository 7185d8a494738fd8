package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/whats-middleware/internal/application/importer"
	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
	"github.com/tu-usuario/whats-middleware/internal/infrastructure/dedup"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// Event evento license-created recebido do Portal de Licenças. PortalID é o
// id externo do evento e a chave de dedup; o cliente é referenciado fracamente
// por telefone e/ou email.
type Event struct {
	PortalID      string
	CustomerPhone string
	CustomerEmail string
	LicenseType   entity.LicenseType
	ReceivedAt    time.Time
}

// OutcomeKind resultado do processamento de um evento.
type OutcomeKind string

const (
	// OutcomeProcessed licença criada e boas-vindas enfileiradas.
	OutcomeProcessed OutcomeKind = "processed"
	// OutcomeDuplicate reentrega de um id já visto na janela de dedup; no-op.
	OutcomeDuplicate OutcomeKind = "duplicate"
	// OutcomeDeferred cliente ainda não visível (lag de replicação); o evento
	// foi aceito e será reprocessado fora da requisição.
	OutcomeDeferred OutcomeKind = "deferred"
)

// Outcome resultado devolvido ao chamador do webhook.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	CustomerID string      `json:"customer_id,omitempty"`
	LicenseID  string      `json:"license_id,omitempty"`
}

// WelcomeEnqueuer agenda a mensagem de boas-vindas do cliente resolvido.
type WelcomeEnqueuer interface {
	EnqueueWelcome(ctx context.Context, customer *entity.Customer) error
}

// Receiver processa eventos license-created: dedup atômico por id de evento,
// resolução do cliente, criação da licença e disparo de exatamente uma
// mensagem de boas-vindas por evento.
type Receiver struct {
	dedup       dedup.Store
	customers   repository.CustomerRepository
	licenses    repository.LicenseRepository
	welcome     WelcomeEnqueuer
	deferred    *DeferredQueue
	countryCode string
	log         *logger.Logger
}

// NewReceiver constrói o receiver. countryCode normaliza o telefone do evento
// com as mesmas regras da importação de CSV.
func NewReceiver(
	store dedup.Store,
	customers repository.CustomerRepository,
	licenses repository.LicenseRepository,
	welcome WelcomeEnqueuer,
	deferred *DeferredQueue,
	countryCode string,
	log *logger.Logger,
) *Receiver {
	return &Receiver{
		dedup:       store,
		customers:   customers,
		licenses:    licenses,
		welcome:     welcome,
		deferred:    deferred,
		countryCode: countryCode,
		log:         log,
	}
}

// Handle processa uma entrega do evento. Reentregas do mesmo id dentro da
// janela de retenção devolvem OutcomeDuplicate sem nenhum efeito colateral:
// remetentes de webhook reenviam em timeout e isso precisa ser no-op.
func (r *Receiver) Handle(ctx context.Context, ev Event) (Outcome, error) {
	if ev.PortalID == "" {
		return Outcome{}, fmt.Errorf("%w: portal_id é obrigatório", domain.ErrInvalidInput)
	}
	if !ev.LicenseType.Valid() {
		return Outcome{}, fmt.Errorf("%w: license_type %q", domain.ErrInvalidInput, ev.LicenseType)
	}
	if ev.CustomerPhone == "" && ev.CustomerEmail == "" {
		return Outcome{}, fmt.Errorf("%w: evento sem referência de cliente", domain.ErrInvalidInput)
	}

	first, err := r.dedup.Acquire(ctx, "license-created:"+ev.PortalID)
	if err != nil {
		return Outcome{}, fmt.Errorf("dedup do evento %s: %w", ev.PortalID, err)
	}
	if !first {
		r.log.Info().Str("portal_id", ev.PortalID).Msg("evento license-created reentregue, no-op")
		return Outcome{Kind: OutcomeDuplicate}, nil
	}

	return r.process(ctx, ev)
}

// process roda após o dedup; também é o caminho de reprocessamento dos
// eventos adiados (que não passam pelo dedup de novo).
func (r *Receiver) process(ctx context.Context, ev Event) (Outcome, error) {
	customer, err := r.resolveCustomer(ev)
	if err != nil {
		return Outcome{}, err
	}
	if customer == nil {
		// O cliente pode ainda não estar visível (lag de replicação). O evento
		// foi aceito; fica para reprocessamento fora da requisição.
		r.deferred.Push(ev)
		r.log.Warn().Str("portal_id", ev.PortalID).Msg("cliente do evento não encontrado, processamento adiado")
		return Outcome{Kind: OutcomeDeferred}, nil
	}

	// Alinha o tipo de licença do cliente ao do evento, se divergirem.
	if customer.LicenseType != ev.LicenseType {
		customer.LicenseType = ev.LicenseType
		customer.UpdatedAt = time.Now()
		if err := r.customers.Update(customer); err != nil {
			return Outcome{}, fmt.Errorf("atualizar tipo de licença do cliente %s: %w", customer.ID, err)
		}
	}

	now := time.Now()
	license := &entity.License{
		ID:          uuid.New().String(),
		CustomerID:  customer.ID,
		LicenseType: ev.LicenseType,
		Status:      entity.LicenseStatusActive,
		PortalID:    ev.PortalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.licenses.Create(license); err != nil {
		return Outcome{}, fmt.Errorf("criar licença do evento %s: %w", ev.PortalID, err)
	}

	if err := r.welcome.EnqueueWelcome(ctx, customer); err != nil {
		return Outcome{}, fmt.Errorf("enfileirar boas-vindas do evento %s: %w", ev.PortalID, err)
	}

	r.log.Info().Str("portal_id", ev.PortalID).Str("customer_id", customer.ID).
		Str("license_type", string(ev.LicenseType)).Msg("evento license-created processado")

	return Outcome{Kind: OutcomeProcessed, CustomerID: customer.ID, LicenseID: license.ID}, nil
}

// resolveCustomer busca por telefone normalizado e depois por email.
func (r *Receiver) resolveCustomer(ev Event) (*entity.Customer, error) {
	if ev.CustomerPhone != "" {
		phone, err := importer.NormalizePhone(ev.CustomerPhone, r.countryCode)
		if err == nil {
			customer, err := r.customers.FindByPhone(phone)
			if err != nil {
				return nil, fmt.Errorf("buscar cliente por telefone: %w", err)
			}
			if customer != nil {
				return customer, nil
			}
		}
	}
	if ev.CustomerEmail != "" {
		customer, err := r.customers.FindByEmail(ev.CustomerEmail)
		if err != nil {
			return nil, fmt.Errorf("buscar cliente por email: %w", err)
		}
		if customer != nil {
			return customer, nil
		}
	}
	return nil, nil
}
