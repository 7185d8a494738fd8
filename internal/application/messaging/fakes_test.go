package messaging_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes compartilhados pelos testes de mensageria
// ──────────────────────────────────────────────────────────────────────────────

// fakeMessageRepo repositório de mensagens em memória, thread-safe.
type fakeMessageRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byID: map[string]*entity.Message{}}
}

func (r *fakeMessageRepo) Create(m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) GetByID(id string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) GetByWhatsAppID(wamid string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.WhatsAppMessageID == wamid {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Message, error) {
	return nil, nil
}

func (r *fakeMessageRepo) List(limit, offset int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Message, 0, len(r.byID))
	for _, m := range r.byID {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMessageRepo) Update(m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) status(id string) entity.MessageStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		return m.Status
	}
	return ""
}

// fakeTransport transporte controlável: falha as primeiras failFirst chamadas
// por telefone e registra a ordem de envio por telefone.
type fakeTransport struct {
	mu        sync.Mutex
	failFirst int
	calls     map[string]int      // telefone -> chamadas
	sent      map[string][]string // telefone -> conteúdos na ordem de envio
	seq       int
}

func newFakeTransport(failFirst int) *fakeTransport {
	return &fakeTransport{
		failFirst: failFirst,
		calls:     map[string]int{},
		sent:      map[string][]string{},
	}
}

func (f *fakeTransport) SendText(_ context.Context, phone, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[phone]++
	if f.calls[phone] <= f.failFirst {
		return "", fmt.Errorf("HTTP 429: rate limit")
	}
	f.seq++
	f.sent[phone] = append(f.sent[phone], body)
	return fmt.Sprintf("wamid.%06d", f.seq), nil
}

func (f *fakeTransport) SendTemplate(ctx context.Context, phone, template string, _ []string) (string, error) {
	return f.SendText(ctx, phone, template)
}

func (f *fakeTransport) sentTo(phone string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[phone]...)
}

func (f *fakeTransport) callCount(phone string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[phone]
}
