// Package session persists the client's current session: the bearer token
// and the cached identity. Both entries are written and removed together.
package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Session is what the client keeps between runs.
type Session struct {
	Token     string
	Identity  models.Identity
	ExpiresAt time.Time
}

// Store is durable session storage.
type Store interface {
	// Save writes token and identity atomically.
	Save(ctx context.Context, s Session) error
	// Load never fails: a missing, malformed or expired session reads as
	// (nil, false).
	Load(ctx context.Context) (*Session, bool)
	// Clear removes both entries. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
