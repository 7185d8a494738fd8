package dto

import (
	"time"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// MessageDTO mensagem na resposta HTTP, com os carimbos por estado.
type MessageDTO struct {
	ID                string     `json:"id"`
	CustomerID        string     `json:"customer_id"`
	Phone             string     `json:"phone"`
	Type              string     `json:"type"`   // hsm|text
	Status            string     `json:"status"` // pending|submitted|sent|delivered|failed
	WhatsAppMessageID string     `json:"whatsapp_message_id,omitempty"`
	Error             string     `json:"error,omitempty"`
	Attempts          int        `json:"attempts"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// MessageListResponse listagem paginada de mensagens.
type MessageListResponse struct {
	Messages []MessageDTO `json:"messages"`
	Page     PageResponse `json:"page"`
}

// MessageFromEntity converte a entidade para o DTO de resposta.
func MessageFromEntity(m *entity.Message) MessageDTO {
	return MessageDTO{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		Phone:             m.Phone,
		Type:              string(m.Type),
		Status:            string(m.Status),
		WhatsAppMessageID: m.WhatsAppMessageID,
		Error:             m.Error,
		Attempts:          m.Attempts,
		SubmittedAt:       m.SubmittedAt,
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		FailedAt:          m.FailedAt,
		CreatedAt:         m.CreatedAt,
	}
}
