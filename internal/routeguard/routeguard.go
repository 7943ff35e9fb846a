// Package routeguard decides whether a navigation should be redirected based
// on the path and whether a session token is present. The same table is used
// by the server's page middleware and by the client's navigator.
package routeguard

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome of a guard evaluation. Location is set only for
// redirects.
type Decision struct {
	Action   Action
	Location string
}

// Policy holds the guard's path tables.
type Policy struct {
	// PublicPrefixes are reachable without a session.
	PublicPrefixes []string
	// GuestOnly paths send a signed-in user to Home.
	GuestOnly []string
	// ExcludedPrefixes are never evaluated (API surface, static assets).
	ExcludedPrefixes []string

	Login string
	Home  string
}

// DefaultPolicy returns the application's route table.
func DefaultPolicy() Policy {
	return Policy{
		PublicPrefixes:   []string{common.RegisterPath, common.LoginPath},
		GuestOnly:        []string{common.LoginPath, common.LandingPath},
		ExcludedPrefixes: []string{"/auth/", "/users/", "/api/", "/static/", "/metrics", "/healthz", "/favicon.ico"},
		Login:            common.LoginPath,
		Home:             common.HomePath,
	}
}

func (p Policy) isPublic(path string) bool {
	for _, prefix := range p.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (p Policy) isGuestOnly(path string) bool {
	for _, g := range p.GuestOnly {
		if path == g {
			return true
		}
	}
	return false
}

// Decide evaluates the guard table. Rules are checked in order:
// no token on a non-public path goes to Login, a token on a guest-only path
// goes to Home, everything else is allowed.
func (p Policy) Decide(path string, hasToken bool) Decision {
	if !hasToken && !p.isPublic(path) {
		return Decision{Action: Redirect, Location: p.Login}
	}
	if hasToken && p.isGuestOnly(path) {
		return Decision{Action: Redirect, Location: p.Home}
	}
	return Decision{Action: Allow}
}

// Excluded reports whether the guard should skip path entirely.
func (p Policy) Excluded(path string) bool {
	for _, prefix := range p.ExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware guards page requests using the auth_token cookie.
func (p Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.Excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		hasToken := false
		if c, err := r.Cookie(common.SessionTokenKey); err == nil && c.Value != "" {
			hasToken = true
		}

		if d := p.Decide(r.URL.Path, hasToken); d.Action == Redirect {
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Decide evaluates the default policy.
func Decide(path string, hasToken bool) Decision {
	return DefaultPolicy().Decide(path, hasToken)
}
