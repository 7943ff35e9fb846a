// Package services contains the client's application services.
// This file defines the authentication service: login, register, logout,
// profile management and a server liveness probe. Every operation that
// changes the stored session runs as one critical section.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// FallbackSessionTTL is used when the token carries no readable expiry.
const FallbackSessionTTL = 24 * time.Hour

// Requester is the authenticated request pipeline.
type Requester interface {
	Get(ctx context.Context, endpoint string, out any) error
	Post(ctx context.Context, endpoint string, body, out any) error
	Patch(ctx context.Context, endpoint string, body, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
}

// Sessions is the session storage the service mutates.
type Sessions interface {
	Save(ctx context.Context, s session.Session) error
	Load(ctx context.Context) (*session.Session, bool)
	Clear(ctx context.Context) error
}

// HealthChecker probes the server.
type HealthChecker interface {
	Check(ctx context.Context) (bool, error)
}

// ErrNotLoggedIn is returned by operations that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in")

type loginResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// AuthService drives the server's auth API and keeps the local session in
// step with it.
type AuthService struct {
	mu       sync.Mutex
	api      Requester
	sessions Sessions
	health   HealthChecker
	now      func() time.Time
}

func NewAuthService(api Requester, sessions Sessions, health HealthChecker) *AuthService {
	return &AuthService{api: api, sessions: sessions, health: health, now: time.Now}
}

// Login authenticates and stores the returned session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.login(ctx, email, password)
}

func (a *AuthService) login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp loginResponse
	err := a.api.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" || resp.User.ID == "" {
		return nil, fmt.Errorf("login: %w: incomplete response", common.ErrorInternal)
	}

	s := session.Session{
		Token:     resp.Token,
		Identity:  resp.User,
		ExpiresAt: a.expiry(resp.Token),
	}
	if err := a.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &s, nil
}

// Register creates the account and then logs in with the same credentials.
func (a *AuthService) Register(ctx context.Context, email, password string, displayName *string) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	body := map[string]any{"email": email, "password": password}
	if displayName != nil {
		body["displayName"] = *displayName
	}

	var created models.Profile
	if err := a.api.Post(ctx, "/auth/register", body, &created); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return a.login(ctx, email, password)
}

// Logout forgets the local session. The server keeps no session state.
func (a *AuthService) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions.Clear(ctx)
}

// CurrentSession returns the stored session without contacting the server.
func (a *AuthService) CurrentSession(ctx context.Context) (*session.Session, bool) {
	return a.sessions.Load(ctx)
}

// Profile fetches the account from the server and refreshes the cached
// identity.
func (a *AuthService) Profile(ctx context.Context) (*models.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var p models.Profile
	if err := a.api.Get(ctx, "/users/me", &p); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if err := a.refreshIdentity(ctx, p.Identity); err != nil {
		return nil, err
	}
	return &p, nil
}

// Rename changes the display name.
func (a *AuthService) Rename(ctx context.Context, displayName string) (*models.Profile, error) {
	return a.updateProfile(ctx, map[string]string{"displayName": displayName})
}

// ChangePassword replaces the password. Tokens already issued stay valid
// until they expire.
func (a *AuthService) ChangePassword(ctx context.Context, password string) (*models.Profile, error) {
	return a.updateProfile(ctx, map[string]string{"password": password})
}

func (a *AuthService) updateProfile(ctx context.Context, body map[string]string) (*models.Profile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var p models.Profile
	if err := a.api.Patch(ctx, "/users/me", body, &p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := a.refreshIdentity(ctx, p.Identity); err != nil {
		return nil, err
	}
	return &p, nil
}

// Deactivate disables the account on the server and clears the session.
func (a *AuthService) Deactivate(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.api.Delete(ctx, "/users/me", nil); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}
	return a.sessions.Clear(ctx)
}

// Ping reports whether the server is serving.
func (a *AuthService) Ping(ctx context.Context) error {
	ok, err := a.health.Check(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	if !ok {
		return fmt.Errorf("%w: server not serving", common.ErrNetwork)
	}
	return nil
}

// refreshIdentity rewrites the cached identity under the current token.
func (a *AuthService) refreshIdentity(ctx context.Context, id models.Identity) error {
	s, ok := a.sessions.Load(ctx)
	if !ok {
		return ErrNotLoggedIn
	}
	s.Identity = id
	if err := a.sessions.Save(ctx, *s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// expiry reads exp from the token without verifying it. The client never
// holds the signing key; the server remains the only judge of validity.
func (a *AuthService) expiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return a.now().Add(FallbackSessionTTL)
}
