package entity

import "time"

// MessageStatus estado de entrega de uma mensagem.
//
// Máquina de estados: pending → submitted → sent → {delivered, failed}.
// delivered e failed são terminais; nenhuma transição sai deles.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"   // criada, aguardando o pool de envio
	StatusSubmitted MessageStatus = "submitted" // entregue ao adaptador da Cloud API
	StatusSent      MessageStatus = "sent"      // confirmada sincronamente pela API
	StatusDelivered MessageStatus = "delivered" // recibo assíncrono de entrega
	StatusFailed    MessageStatus = "failed"    // recibo de falha ou teto de tentativas
)

// Terminal informa se o estado não admite mais transições.
func (s MessageStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// CanTransition valida a transição s → to conforme a máquina de estados.
func (s MessageStatus) CanTransition(to MessageStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusSubmitted || to == StatusFailed
	case StatusSubmitted:
		return to == StatusSent || to == StatusFailed
	case StatusSent:
		return to == StatusDelivered || to == StatusFailed
	default:
		return false
	}
}

// MessageType canal da mensagem: template HSM aprovado ou texto livre.
type MessageType string

const (
	MessageHSM  MessageType = "hsm"
	MessageText MessageType = "text"
)

// Message pertence a exatamente um Customer. Criada pelo disparo de boas-vindas
// ou por envio manual; mutada apenas pelo pool de envio (submissão) e pelo
// rastreador de status (recibos). Nunca é removida, apenas transiciona.
type Message struct {
	ID                string
	CustomerID        string
	Phone             string
	LicenseType       LicenseType
	Content           string
	Type              MessageType
	Status            MessageStatus
	WhatsAppMessageID string // id atribuído pelo provedor após a submissão
	Error             string
	Attempts          int

	SubmittedAt *time.Time
	SentAt      *time.Time
	DeliveredAt *time.Time
	FailedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
