package session

import (
	"context"
	"sync"
)

// Manager serializes every read and write of a Store so that the save or
// clear of one logical operation never interleaves with another. Subscribers
// are called after each change, outside the lock.
type Manager struct {
	mu    sync.Mutex
	store Store

	subsMu sync.Mutex
	subs   map[int]func()
	nextID int
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, subs: make(map[int]func())}
}

func (m *Manager) Save(ctx context.Context, s Session) error {
	m.mu.Lock()
	err := m.store.Save(ctx, s)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify()
	return nil
}

func (m *Manager) Load(ctx context.Context) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load(ctx)
}

// Token returns the stored bearer token, if any.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	s, ok := m.Load(ctx)
	if !ok {
		return "", false
	}
	return s.Token, true
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	err := m.store.Clear(ctx)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify()
	return nil
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (m *Manager) Subscribe(fn func()) func() {
	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

func (m *Manager) notify() {
	m.subsMu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
