package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/crypto"
)

// EncryptedStore seals values before they reach the inner store. The full key
// is the associated data, so a value copied under another key fails to open.
type EncryptedStore struct {
	inner  domain.KeyValueStore
	sealer crypto.Sealer
}

func Encrypted(inner domain.KeyValueStore, sealer crypto.Sealer) *EncryptedStore {
	return &EncryptedStore{inner: inner, sealer: sealer}
}

// Get reports values that fail to open as ErrPersistenceCorrupt.
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.sealer.Open(sealed, []byte(key))
	if err != nil {
		return nil, errors.Join(domain.ErrPersistenceCorrupt, fmt.Errorf("open %q: %w", key, err))
	}
	return plain, nil
}

func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := s.sealer.Seal(value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
