package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestToastPrinter_PrintsEachToastOnce(t *testing.T) {
	bus := notify.New(notify.WithExitDelay(10 * time.Millisecond))
	defer bus.Close()

	var out syncBuffer
	unsubscribe := NewToastPrinter(bus, &out).Attach()
	defer unsubscribe()

	id := bus.Error("401 | Unauthorized")
	bus.Success("Account deactivated")
	bus.Dismiss(id)

	require.Eventually(t, func() bool {
		return bus.State(id) == notify.Removed
	}, time.Second, 5*time.Millisecond)

	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "[ERROR] 401 | Unauthorized\n"))
	assert.Equal(t, 1, strings.Count(got, "[SUCCESS] Account deactivated\n"))
}

func TestToastPrinter_Unsubscribe(t *testing.T) {
	bus := notify.New()
	defer bus.Close()

	var out syncBuffer
	unsubscribe := NewToastPrinter(bus, &out).Attach()
	unsubscribe()

	bus.Info("hello")
	assert.Empty(t, out.String())
}
