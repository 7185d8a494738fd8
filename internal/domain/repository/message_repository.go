package repository

import "github.com/tu-usuario/whats-middleware/internal/domain/entity"

// MessageRepository define a porta de persistência para Message.
// Mensagens nunca são removidas; apenas criadas e atualizadas.
type MessageRepository interface {
	Create(message *entity.Message) error
	GetByID(id string) (*entity.Message, error)
	GetByWhatsAppID(whatsappMessageID string) (*entity.Message, error)
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Message, error)
	List(limit, offset int) ([]*entity.Message, error)
	Update(message *entity.Message) error
}
