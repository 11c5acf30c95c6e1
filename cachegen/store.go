package cachegen

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired, and by
// Store.Incr when the store refuses to increment an absent key.
var ErrMiss = errors.New("cachegen: cache miss")

// Store is the shared cache the gate relies on. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Add sets key only if it is absent and reports whether it did.
	Add(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	// Incr atomically increments the integer stored at key.
	Incr(ctx context.Context, key string) (int64, error)
}
