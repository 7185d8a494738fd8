package dedup

import "context"

// Store é o conjunto de idempotência de eventos de webhook: check-and-insert
// atômico por chave, com retenção limitada (TTL). Duas entregas concorrentes
// do mesmo id nunca adquirem a chave as duas.
type Store interface {
	// Acquire tenta registrar a chave. Devolve true na primeira vez dentro da
	// janela de retenção; false se a chave já foi vista.
	Acquire(ctx context.Context, key string) (bool, error)
}
