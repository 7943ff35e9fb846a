package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/notify"
)

// ToastPrinter writes each new toast on the bus to w exactly once.
type ToastPrinter struct {
	mu   sync.Mutex
	w    io.Writer
	bus  *notify.Bus
	seen map[string]struct{}
}

func NewToastPrinter(bus *notify.Bus, w io.Writer) *ToastPrinter {
	return &ToastPrinter{w: w, bus: bus, seen: make(map[string]struct{})}
}

// Attach subscribes the printer and returns the unsubscribe function.
func (p *ToastPrinter) Attach() func() {
	return p.bus.Subscribe(p.render)
}

func (p *ToastPrinter) render() {
	snapshot := p.bus.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()

	present := make(map[string]struct{}, len(snapshot))
	for _, t := range snapshot {
		present[t.ID] = struct{}{}
		if _, ok := p.seen[t.ID]; ok || t.State != notify.Visible {
			continue
		}
		p.seen[t.ID] = struct{}{}
		fmt.Fprintf(p.w, "[%s] %s\n", strings.ToUpper(string(t.Severity)), t.Message)
	}

	for id := range p.seen {
		if _, ok := present[id]; !ok {
			delete(p.seen, id)
		}
	}
}
