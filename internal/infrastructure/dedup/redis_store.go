package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore dedup sobre Redis: SET NX com TTL faz o check-and-insert atômico
// no servidor, valendo também entre múltiplas instâncias da aplicação.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore constrói o store. ttl define a janela de retenção das chaves.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Acquire registra a chave via SETNX. true = primeira entrega na janela.
func (s *RedisStore) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, "dedup:"+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return ok, nil
}
