// Package notify is the client's notification bus: short-lived toasts with
// a severity, each expiring on its own timer through a two-phase exit
// (Visible, then Exiting, then removed after a fixed delay).
//
// A Bus is an explicit value. The application builds one and hands it to
// every publisher and observer.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

type State int

const (
	Visible State = iota
	Exiting
	Removed
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Exiting:
		return "exiting"
	default:
		return "removed"
	}
}

const (
	DefaultDuration  = 5 * time.Second
	DefaultExitDelay = 300 * time.Millisecond
)

type Toast struct {
	ID       string
	Message  string
	Severity Severity
	Duration time.Duration
	State    State
}

type entry struct {
	toast Toast
	timer *time.Timer
}

type Option func(*Bus)

// WithExitDelay sets how long a dismissed toast stays in the Exiting state.
func WithExitDelay(d time.Duration) Option {
	return func(b *Bus) { b.exitDelay = d }
}

type Bus struct {
	mu        sync.Mutex
	order     []string
	entries   map[string]*entry
	listeners map[int]func()
	nextID    int
	exitDelay time.Duration
	closed    bool
}

func New(opts ...Option) *Bus {
	b := &Bus{
		entries:   make(map[string]*entry),
		listeners: make(map[int]func()),
		exitDelay: DefaultExitDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show publishes a toast and returns its id. A non-positive duration means
// DefaultDuration. A closed bus drops the toast and returns "".
func (b *Bus) Show(message string, severity Severity, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}

	id := uuid.NewString()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ""
	}
	e := &entry{toast: Toast{ID: id, Message: message, Severity: severity, Duration: duration, State: Visible}}
	e.timer = time.AfterFunc(duration, func() { b.Dismiss(id) })
	b.entries[id] = e
	b.order = append(b.order, id)
	b.mu.Unlock()

	b.notify()
	return id
}

func (b *Bus) Success(message string) string { return b.Show(message, SeveritySuccess, 0) }
func (b *Bus) Error(message string) string   { return b.Show(message, SeverityError, 0) }
func (b *Bus) Info(message string) string    { return b.Show(message, SeverityInfo, 0) }
func (b *Bus) Warning(message string) string { return b.Show(message, SeverityWarning, 0) }

// Dismiss starts the exit of a visible toast. The toast is removed after the
// exit delay. Dismissing an exiting or absent toast does nothing.
func (b *Bus) Dismiss(id string) {
	b.mu.Lock()
	e, ok := b.entries[id]
	if !ok || e.toast.State != Visible {
		b.mu.Unlock()
		return
	}
	e.timer.Stop()
	e.toast.State = Exiting
	e.timer = time.AfterFunc(b.exitDelay, func() { b.Remove(id) })
	b.mu.Unlock()

	b.notify()
}

// Remove drops a toast immediately. Removing an absent id is a no-op and
// does not notify.
func (b *Bus) Remove(id string) {
	b.mu.Lock()
	e, ok := b.entries[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	e.timer.Stop()
	delete(b.entries, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	b.notify()
}

// State reports where a toast is in its lifecycle. Unknown ids are Removed.
func (b *Bus) State(id string) State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[id]; ok {
		return e.toast.State
	}
	return Removed
}

// Snapshot returns the current toasts in publication order.
func (b *Bus) Snapshot() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Toast, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entries[id].toast)
	}
	return out
}

// Subscribe registers fn to run after every mutation. Listeners get no
// payload and should re-read Snapshot. The returned func unsubscribes.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Close stops every pending timer and drops all toasts. Later calls to Show
// are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, e := range b.entries {
		e.timer.Stop()
	}
	b.entries = make(map[string]*entry)
	b.order = nil
}

func (b *Bus) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
