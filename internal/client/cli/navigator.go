package cli

import (
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/routeguard"
)

// maxRedirects bounds guard hops for one navigation. The default table
// settles in at most one.
const maxRedirects = 3

// Navigator holds the REPL's current page. Every move is checked against
// the route guard, so the page it ends on is always one the session may see.
type Navigator struct {
	mu         sync.Mutex
	path       string
	policy     routeguard.Policy
	hasSession func() bool
	onChange   func(from, to string)
}

func NewNavigator(policy routeguard.Policy, hasSession func() bool) *Navigator {
	return &Navigator{policy: policy, hasSession: hasSession}
}

// OnChange registers fn to run after the page changes.
func (n *Navigator) OnChange(fn func(from, to string)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

func (n *Navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Navigate moves to path, following guard redirects.
func (n *Navigator) Navigate(path string) {
	target := n.resolve(path)

	n.mu.Lock()
	from := n.path
	n.path = target
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil && from != target {
		fn(from, target)
	}
}

// Refresh re-evaluates the current page, e.g. after the session changed.
func (n *Navigator) Refresh() {
	n.Navigate(n.Path())
}

func (n *Navigator) resolve(path string) string {
	has := n.hasSession()
	for i := 0; i < maxRedirects; i++ {
		d := n.policy.Decide(path, has)
		if d.Action != routeguard.Redirect || d.Location == path {
			break
		}
		path = d.Location
	}
	return path
}
