package kvstore

import (
	"context"

	"github.com/pscheid92/chargewatch/internal/domain"
)

// ScopedStore prefixes every key before delegating, giving each client its
// own namespace in a shared store.
type ScopedStore struct {
	inner  domain.KeyValueStore
	prefix string
}

func Scoped(inner domain.KeyValueStore, prefix string) *ScopedStore {
	return &ScopedStore{inner: inner, prefix: prefix}
}

// ClientPrefix is the namespace of one web client.
func ClientPrefix(clientID string) string {
	return "client:" + clientID + ":"
}

func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}
