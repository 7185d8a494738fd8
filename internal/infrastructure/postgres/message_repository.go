package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/internal/domain/repository"
)

// Garante que MessageRepo implementa repository.MessageRepository.
var _ repository.MessageRepository = (*MessageRepo)(nil)

// MessageRepo implementação da porta MessageRepository sobre PostgreSQL.
type MessageRepo struct {
	db Querier
}

// NewMessageRepository constrói o adaptador de persistência de mensagens.
func NewMessageRepository(db Querier) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, customer_id, phone, license_type, content, type, status,
	whatsapp_message_id, error, attempts, submitted_at, sent_at, delivered_at, failed_at,
	created_at, updated_at`

// Create persiste uma nova mensagem.
func (r *MessageRepo) Create(message *entity.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.Exec(context.Background(), query,
		message.ID, message.CustomerID, message.Phone, message.LicenseType,
		message.Content, message.Type, message.Status,
		message.WhatsAppMessageID, message.Error, message.Attempts,
		message.SubmittedAt, message.SentAt, message.DeliveredAt, message.FailedAt,
		message.CreatedAt, message.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetByID obtém uma mensagem por ID. Devolve nil, nil se não existir.
func (r *MessageRepo) GetByID(id string) (*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := r.scanOne(r.db.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// GetByWhatsAppID localiza a mensagem pelo wamid do provedor, para correlacionar
// recibos de status com a mensagem original.
func (r *MessageRepo) GetByWhatsAppID(whatsappMessageID string) (*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE whatsapp_message_id = $1`
	m, err := r.scanOne(r.db.QueryRow(context.Background(), query, whatsappMessageID))
	if err != nil {
		return nil, fmt.Errorf("get message by wamid: %w", err)
	}
	return m, nil
}

// ListByCustomer lista mensagens de um cliente com paginação.
func (r *MessageRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages by customer: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// List lista mensagens com paginação, da mais recente para a mais antiga.
func (r *MessageRepo) List(limit, offset int) ([]*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update persiste o estado atual da mensagem, carimbos incluídos.
func (r *MessageRepo) Update(message *entity.Message) error {
	query := `
		UPDATE messages
		SET status = $2, whatsapp_message_id = $3, error = $4, attempts = $5,
		    submitted_at = $6, sent_at = $7, delivered_at = $8, failed_at = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.db.Exec(context.Background(), query,
		message.ID, message.Status, message.WhatsAppMessageID, message.Error, message.Attempts,
		message.SubmittedAt, message.SentAt, message.DeliveredAt, message.FailedAt,
		message.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update message %s: não encontrada", message.ID)
	}
	return nil
}

func (r *MessageRepo) scanOne(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	err := row.Scan(
		&m.ID, &m.CustomerID, &m.Phone, &m.LicenseType, &m.Content, &m.Type, &m.Status,
		&m.WhatsAppMessageID, &m.Error, &m.Attempts,
		&m.SubmittedAt, &m.SentAt, &m.DeliveredAt, &m.FailedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepo) scanAll(rows pgx.Rows) ([]*entity.Message, error) {
	var messages []*entity.Message
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(
			&m.ID, &m.CustomerID, &m.Phone, &m.LicenseType, &m.Content, &m.Type, &m.Status,
			&m.WhatsAppMessageID, &m.Error, &m.Attempts,
			&m.SubmittedAt, &m.SentAt, &m.DeliveredAt, &m.FailedAt,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
