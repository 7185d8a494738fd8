package dedup

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

const memoryShards = 16

// MemoryStore dedup em memória para execução sem Redis: mapa shardado por
// hash da chave, com expiração por timestamp. Vale apenas para uma instância
// do processo.
type MemoryStore struct {
	ttl    time.Duration
	now    func() time.Time
	shards [memoryShards]memoryShard
}

type memoryShard struct {
	mu   sync.Mutex
	seen map[string]time.Time // chave -> instante de expiração
}

// NewMemoryStore constrói o store com a janela de retenção dada.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{ttl: ttl, now: time.Now}
	for i := range s.shards {
		s.shards[i].seen = make(map[string]time.Time)
	}
	return s
}

// Acquire faz o check-and-insert sob o mutex do shard; entradas expiradas do
// shard são varridas na passada.
func (s *MemoryStore) Acquire(_ context.Context, key string) (bool, error) {
	shard := &s.shards[shardIndex(key)]
	now := s.now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for k, exp := range shard.seen {
		if now.After(exp) {
			delete(shard.seen, k)
		}
	}

	if exp, ok := shard.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	shard.seen[key] = now.Add(s.ttl)
	return true, nil
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % memoryShards)
}
