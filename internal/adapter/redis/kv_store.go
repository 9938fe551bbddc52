package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pscheid92/chargewatch/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "chargewatch:kv:"

// KVStore keeps values as plain Redis strings under a fixed prefix.
type KVStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewKVStore creates the store. A zero ttl keeps keys forever.
func NewKVStore(rdb *goredis.Client, ttl time.Duration) *KVStore {
	return &KVStore{rdb: rdb, ttl: ttl}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
