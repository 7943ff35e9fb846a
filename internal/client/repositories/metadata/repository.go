// Package metadata is the client's small key-value table. Entries may carry
// an expiry; an expired entry reads as absent.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set upserts key. A zero expiresAt stores an entry that never expires.
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
