package domain

import "context"

// KeyValueStore persists small opaque values. Get returns ErrKeyNotFound for
// a missing key; Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
