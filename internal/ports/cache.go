package ports

import (
	"context"
	"time"
)

// Cache is a key-value capability for read-mostly status lookups.
// It is never consulted for guards; the ledger is the source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
