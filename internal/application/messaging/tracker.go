package messaging

import (
	"fmt"
	"sync"
	"time"

	"github.com/tu-usuario/whats-middleware/internal/domain"
	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// StatusTracker é o único dono da máquina de estados de entrega das mensagens.
// O pool de envio reporta submissão/confirmação/esgotamento; os recibos
// assíncronos do provedor chegam por ApplyReceipt. Estados terminais absorvem
// qualquer recibo posterior (log e descarte, idempotente contra duplicados).
type StatusTracker struct {
	mu       sync.Mutex
	messages repository.MessageRepository
	log      *logger.Logger
}

// NewStatusTracker constrói o rastreador de status.
func NewStatusTracker(messages repository.MessageRepository, log *logger.Logger) *StatusTracker {
	return &StatusTracker{messages: messages, log: log}
}

// MarkSubmitted registra a entrega ao adaptador da Cloud API (pending → submitted)
// e grava o id de mensagem atribuído pelo provedor.
func (t *StatusTracker) MarkSubmitted(msg *entity.Message, providerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.transition(msg, entity.StatusSubmitted); err != nil {
		return err
	}
	msg.WhatsAppMessageID = providerID
	return t.persist(msg)
}

// MarkSent registra a confirmação síncrona da API (submitted → sent).
func (t *StatusTracker) MarkSent(msg *entity.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.transition(msg, entity.StatusSent); err != nil {
		return err
	}
	return t.persist(msg)
}

// MarkFailed leva a mensagem ao estado terminal failed (recibo explícito de
// falha ou teto de tentativas do pool de envio).
func (t *StatusTracker) MarkFailed(msg *entity.Message, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if msg.Status.Terminal() {
		t.logDiscard(msg, entity.StatusFailed)
		return nil
	}
	if err := t.transition(msg, entity.StatusFailed); err != nil {
		return err
	}
	msg.Error = reason
	return t.persist(msg)
}

// ApplyReceipt aplica um recibo assíncrono do provedor, endereçado pelo id de
// mensagem do WhatsApp. Recibos de mensagens desconhecidas ou já terminais são
// absorvidos como no-op (entregas atrasadas ou duplicadas são esperadas).
func (t *StatusTracker) ApplyReceipt(whatsappMessageID, status string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg, err := t.messages.GetByWhatsAppID(whatsappMessageID)
	if err != nil {
		return fmt.Errorf("buscar mensagem do recibo: %w", err)
	}
	if msg == nil {
		t.log.Warn().Str("whatsapp_message_id", whatsappMessageID).Str("status", status).
			Msg("recibo para mensagem desconhecida, descartado")
		return nil
	}

	target, ok := receiptStatus(status)
	if !ok {
		t.log.Debug().Str("whatsapp_message_id", whatsappMessageID).Str("status", status).
			Msg("recibo com status não rastreado, ignorado")
		return nil
	}

	if msg.Status.Terminal() || msg.Status == target {
		t.logDiscard(msg, target)
		return nil
	}
	if !msg.Status.CanTransition(target) {
		t.log.Warn().Str("message_id", msg.ID).
			Str("from", string(msg.Status)).Str("to", string(target)).
			Msg("recibo fora de ordem, descartado")
		return nil
	}

	if err := t.transition(msg, target); err != nil {
		return err
	}
	return t.persist(msg)
}

// receiptStatus traduz o status do recibo da Cloud API para a máquina interna.
func receiptStatus(status string) (entity.MessageStatus, bool) {
	switch status {
	case "sent":
		return entity.StatusSent, true
	case "delivered":
		return entity.StatusDelivered, true
	case "failed":
		return entity.StatusFailed, true
	default:
		// "read" e demais eventos não mudam o estado de entrega
		return "", false
	}
}

func (t *StatusTracker) transition(msg *entity.Message, to entity.MessageStatus) error {
	if !msg.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s → %s (mensagem %s)", domain.ErrInvalidTransition, msg.Status, to, msg.ID)
	}

	now := time.Now()
	msg.Status = to
	msg.UpdatedAt = now
	switch to {
	case entity.StatusSubmitted:
		msg.SubmittedAt = &now
	case entity.StatusSent:
		msg.SentAt = &now
	case entity.StatusDelivered:
		msg.DeliveredAt = &now
	case entity.StatusFailed:
		msg.FailedAt = &now
	}

	t.log.Info().Str("message_id", msg.ID).Str("status", string(to)).Msg("transição de estado da mensagem")
	return nil
}

func (t *StatusTracker) persist(msg *entity.Message) error {
	if err := t.messages.Update(msg); err != nil {
		return fmt.Errorf("persistir estado da mensagem %s: %w", msg.ID, err)
	}
	return nil
}

func (t *StatusTracker) logDiscard(msg *entity.Message, target entity.MessageStatus) {
	t.log.Info().Str("message_id", msg.ID).
		Str("current", string(msg.Status)).Str("receipt", string(target)).
		Msg("recibo para mensagem em estado terminal ou repetido, descartado")
}
