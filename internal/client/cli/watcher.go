package cli

import (
	"context"
	"sync"
	"time"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const pingTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type notifier interface {
	Info(message string) string
	Warning(message string) string
}

// onlineWatcher tracks server reachability and announces changes.
type onlineWatcher struct {
	mu     sync.Mutex
	mode   Mode
	pinger pinger
	notes  notifier
}

func (w *onlineWatcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

func (w *onlineWatcher) setMode(mode Mode) {
	w.mu.Lock()
	prev := w.mode
	w.mode = mode
	w.mu.Unlock()

	if prev == mode {
		return
	}
	switch {
	case mode == ModeOffline:
		w.notes.Warning("Server unavailable")
	case prev == ModeOffline:
		w.notes.Info("Server is back online")
	}
}

func (w *onlineWatcher) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := w.pinger.Ping(pingCtx)
	if ctx.Err() != nil {
		// shutting down
		return
	}
	if err != nil {
		w.setMode(ModeOffline)
		return
	}
	w.setMode(ModeOnline)
}

// Run probes once immediately, then every interval until ctx is done.
func (w *onlineWatcher) Run(ctx context.Context, interval time.Duration) {
	w.check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
