package messaging

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tu-usuario/whats-middleware/internal/domain/entity"
	"github.com/tu-usuario/whats-middleware/pkg/logger"
)

// Transport adaptador de saída para a WhatsApp Cloud API. Devolve o id de
// mensagem atribuído pelo provedor na confirmação síncrona.
type Transport interface {
	SendText(ctx context.Context, phone, body string) (string, error)
	SendTemplate(ctx context.Context, phone, template string, params []string) (string, error)
}

// ErrQueueFull fila de saída no limite; o chamador decide se reapresenta.
var ErrQueueFull = errors.New("fila de envio cheia")

// DispatcherConfig parâmetros do pool de envio.
type DispatcherConfig struct {
	Lanes       int           // número de filas ordenadas
	QueueSize   int           // capacidade de cada fila
	MaxAttempts int           // teto de tentativas por mensagem
	BaseBackoff time.Duration // atraso base do backoff exponencial
}

// Dispatcher pool de concorrência limitada que drena a fila de saída.
//
// Cada cliente é atribuído por hash a exatamente uma lane com um único worker;
// mensagens do mesmo cliente saem na ordem de enfileiramento. Entre clientes
// de lanes diferentes não há garantia de ordem.
type Dispatcher struct {
	cfg       DispatcherConfig
	transport Transport
	tracker   *StatusTracker
	log       *logger.Logger

	lanes   []chan *entity.Message
	started atomic.Bool

	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher constrói o pool. Valores não positivos caem nos defaults.
func NewDispatcher(cfg DispatcherConfig, transport Transport, tracker *StatusTracker, log *logger.Logger) *Dispatcher {
	if cfg.Lanes <= 0 {
		cfg.Lanes = 8
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}

	lanes := make([]chan *entity.Message, cfg.Lanes)
	for i := range lanes {
		lanes[i] = make(chan *entity.Message, cfg.QueueSize)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	return &Dispatcher{
		cfg:       cfg,
		transport: transport,
		tracker:   tracker,
		log:       log,
		lanes:     lanes,
		g:         g,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start sobe um worker por lane. Idempotente.
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	for i := range d.lanes {
		lane := d.lanes[i]
		laneID := i
		d.g.Go(func() error {
			d.runLane(laneID, lane)
			return nil
		})
	}
	d.log.Info().Int("lanes", d.cfg.Lanes).Int("queue_size", d.cfg.QueueSize).
		Msg("pool de envio iniciado")
}

// Stop cancela os workers e espera o término. Mensagens ainda enfileiradas
// permanecem pending e voltam no próximo ciclo do processo.
func (d *Dispatcher) Stop() {
	d.cancel()
	_ = d.g.Wait()
	d.log.Info().Msg("pool de envio parado")
}

// Enqueue coloca a mensagem na lane do cliente. Não bloqueia: devolve
// ErrQueueFull quando a lane está no limite.
func (d *Dispatcher) Enqueue(msg *entity.Message) error {
	if msg.Status != entity.StatusPending {
		return fmt.Errorf("mensagem %s não está pending (estado %s)", msg.ID, msg.Status)
	}
	lane := d.lanes[laneIndex(msg.CustomerID, len(d.lanes))]
	select {
	case lane <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) runLane(id int, lane chan *entity.Message) {
	for {
		select {
		case <-d.ctx.Done():
			return
		case msg := <-lane:
			d.dispatch(d.ctx, msg)
		}
	}
}

// dispatch submete uma mensagem com retry e backoff até o teto de tentativas.
func (d *Dispatcher) dispatch(ctx context.Context, msg *entity.Message) {
	// Violação de invariante interna: nunca deveria passar da validação.
	// Falha alta e terminal, sem retry.
	if !msg.LicenseType.Valid() || (msg.Type != entity.MessageText && msg.Type != entity.MessageHSM) {
		d.log.Error().Str("message_id", msg.ID).
			Str("license_type", string(msg.LicenseType)).Str("type", string(msg.Type)).
			Msg("mensagem inválida chegou ao pool de envio, falha interna")
		if err := d.tracker.MarkFailed(msg, "falha interna: mensagem inválida no pool de envio"); err != nil {
			d.log.Error().Err(err).Str("message_id", msg.ID).Msg("falha ao marcar mensagem como failed")
		}
		return
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		providerID, err := d.submit(ctx, msg)
		if err == nil {
			msg.Attempts = attempt
			if err := d.tracker.MarkSubmitted(msg, providerID); err != nil {
				d.log.Error().Err(err).Str("message_id", msg.ID).Msg("falha ao registrar submissão")
				return
			}
			// Confirmação síncrona da Cloud API: submitted → sent
			if err := d.tracker.MarkSent(msg); err != nil {
				d.log.Error().Err(err).Str("message_id", msg.ID).Msg("falha ao registrar confirmação")
			}
			return
		}

		lastErr = err
		msg.Attempts = attempt
		d.log.Warn().Err(err).Str("message_id", msg.ID).Int("attempt", attempt).
			Int("max_attempts", d.cfg.MaxAttempts).Msg("falha de transporte no envio")

		if attempt == d.cfg.MaxAttempts {
			break
		}
		timer := time.NewTimer(Backoff(attempt, d.cfg.BaseBackoff))
		select {
		case <-ctx.Done():
			timer.Stop()
			// Resultado descartado; a mensagem fica pending para o próximo ciclo.
			return
		case <-timer.C:
		}
	}

	// Teto esgotado: terminal, sem retry infinito.
	if err := d.tracker.MarkFailed(msg, fmt.Sprintf("tentativas esgotadas: %v", lastErr)); err != nil {
		d.log.Error().Err(err).Str("message_id", msg.ID).Msg("falha ao marcar mensagem como failed")
	}
}

func (d *Dispatcher) submit(ctx context.Context, msg *entity.Message) (string, error) {
	switch msg.Type {
	case entity.MessageHSM:
		return d.transport.SendTemplate(ctx, msg.Phone, msg.Content, nil)
	default:
		return d.transport.SendText(ctx, msg.Phone, msg.Content)
	}
}

// laneIndex hash FNV-1a do id do cliente sobre o array fixo de lanes.
func laneIndex(customerID string, lanes int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID))
	return int(h.Sum32() % uint32(lanes))
}
