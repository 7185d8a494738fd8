package webhook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// Limites do reprocessamento de eventos adiados.
const (
	deferredCapacity    = 1024
	deferredMaxAttempts = 10
)

type deferredEvent struct {
	ev       Event
	attempts int
}

// DeferredQueue fila em processo, limitada, de eventos cujo cliente ainda não
// estava visível. Um loop de reprocessamento a drena periodicamente; eventos
// que estouram o teto de tentativas são descartados com log de erro.
type DeferredQueue struct {
	mu     sync.Mutex
	events []deferredEvent
	log    *logger.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDeferredQueue constrói a fila.
func NewDeferredQueue(log *logger.Logger) *DeferredQueue {
	return &DeferredQueue{log: log}
}

// Push adiciona um evento adiado. Com a fila no limite, o mais antigo é
// descartado com log de erro (retenção limitada, sem crescimento sem fim).
func (q *DeferredQueue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) >= deferredCapacity {
		dropped := q.events[0]
		q.events = q.events[1:]
		q.log.Error().Str("portal_id", dropped.ev.PortalID).
			Msg("fila de eventos adiados cheia, evento mais antigo descartado")
	}
	q.events = append(q.events, deferredEvent{ev: ev})
}

// Len tamanho atual da fila.
func (q *DeferredQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Start sobe o loop de reprocessamento com o intervalo dado. Idempotente.
func (q *DeferredQueue) Start(r *Receiver, interval time.Duration) {
	if !q.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.done = make(chan struct{})

	go func() {
		defer close(q.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		q.log.Info().Dur("interval", interval).Msg("loop de eventos adiados iniciado")
		for {
			select {
			case <-ctx.Done():
				q.log.Info().Msg("loop de eventos adiados parado")
				return
			case <-ticker.C:
				q.Drain(ctx, r)
			}
		}
	}()
}

// Stop cancela o loop e espera o término.
func (q *DeferredQueue) Stop() {
	if !q.running.CompareAndSwap(true, false) {
		return
	}
	q.cancel()
	<-q.done
}

// Drain reprocessa todos os eventos adiados uma vez. Eventos cujo cliente
// continua invisível voltam para a fila até o teto de tentativas. O dedup não
// roda de novo: a chave do evento já foi adquirida na entrega original.
func (q *DeferredQueue) Drain(ctx context.Context, r *Receiver) {
	q.mu.Lock()
	batch := q.events
	q.events = nil
	q.mu.Unlock()

	for _, item := range batch {
		if ctx.Err() != nil {
			// Devolve o restante sem consumir tentativas
			q.mu.Lock()
			q.events = append(q.events, item)
			q.mu.Unlock()
			continue
		}

		outcome, err := r.process(ctx, item.ev)
		if err != nil {
			q.log.Error().Err(err).Str("portal_id", item.ev.PortalID).
				Msg("falha ao reprocessar evento adiado")
			q.requeue(item)
			continue
		}
		if outcome.Kind == OutcomeDeferred {
			// process já devolveu o evento via Push; registra a tentativa
			q.bumpAttempts(item)
		}
	}
}

// requeue devolve o evento respeitando o teto de tentativas.
func (q *DeferredQueue) requeue(item deferredEvent) {
	item.attempts++
	if item.attempts >= deferredMaxAttempts {
		q.log.Error().Str("portal_id", item.ev.PortalID).Int("attempts", item.attempts).
			Msg("evento adiado estourou o teto de tentativas, descartado")
		return
	}
	q.mu.Lock()
	q.events = append(q.events, item)
	q.mu.Unlock()
}

// bumpAttempts localiza o evento readicionado por process e propaga o
// contador de tentativas, descartando no teto.
func (q *DeferredQueue) bumpAttempts(item deferredEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.events {
		if q.events[i].ev.PortalID == item.ev.PortalID && q.events[i].attempts == 0 {
			q.events[i].attempts = item.attempts + 1
			if q.events[i].attempts >= deferredMaxAttempts {
				q.log.Error().Str("portal_id", item.ev.PortalID).Int("attempts", q.events[i].attempts).
					Msg("evento adiado estourou o teto de tentativas, descartado")
				q.events = append(q.events[:i], q.events[i+1:]...)
			}
			return
		}
	}
}
