package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &s
	return nil
}

func (m *MemoryStore) Load(ctx context.Context) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil || m.sess.Token == "" || m.sess.Identity.ID == "" {
		return nil, false
	}
	if !m.sess.ExpiresAt.IsZero() && !m.now().Before(m.sess.ExpiresAt) {
		return nil, false
	}
	s := *m.sess
	return &s, true
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
