// Package services contains server-side business logic. AuthService is the
// authority of the session protocol: it registers credential records, checks
// passwords and issues bearer tokens, and resolves token subjects back into
// live identities.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
	VerifyDummy(password string)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject, email string) (string, time.Time, error)
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName *string
}

// ProfileInput carries optional profile changes; nil fields are left as is.
type ProfileInput struct {
	DisplayName *string
	Password    *string
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.Identity
}

type AuthService struct {
	users  users.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	logger logging.Logger
}

func NewAuthService(repo users.Repository, hasher PasswordHasher, tokens TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{users: repo, hasher: hasher, tokens: tokens, logger: logger}
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the password and stores a new credential record. A taken
// email yields an error wrapping common.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.UserSummary, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.users.Create(ctx, &models.User{
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u.Summary(), nil
}

// Login checks the email and password and issues a token. Unknown email,
// wrong password and deactivated account all return
// common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error finding user: %w", err)
		}
		s.hasher.VerifyDummy(password)
		s.logger.Debug(ctx, "login failed", "reason", "unknown email")
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		s.logger.Debug(ctx, "login failed", "reason", "wrong password", "user_id", u.ID)
		return nil, common.ErrInvalidCredentials
	}
	if !u.Active {
		s.logger.Debug(ctx, "login failed", "reason", "inactive", "user_id", u.ID)
		return nil, common.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u.Identity()}, nil
}

// ResolveIdentity turns a token subject into the live record. Unknown or
// deactivated ids yield common.ErrUnauthorized.
func (s *AuthService) ResolveIdentity(ctx context.Context, id string) (*models.UserSummary, error) {
	u, err := s.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Summary(), nil
}

// UpdateProfile changes the display name and/or password of the caller's own
// record.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.UserSummary, error) {
	u, err := s.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		u.DisplayName = in.DisplayName
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		u.PasswordHash = hash
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", id, "password_changed", in.Password != nil)
	return updated.Summary(), nil
}

// Deactivate marks the caller's record inactive. Tokens already issued stop
// resolving on the next request.
func (s *AuthService) Deactivate(ctx context.Context, id string) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnauthorized
		}
		return fmt.Errorf("error deactivating user: %w", err)
	}

	s.logger.Info(ctx, "user deactivated", "user_id", id)
	return nil
}

func (s *AuthService) activeUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	if !u.Active {
		return nil, common.ErrUnauthorized
	}
	return u, nil
}

var (
	_ PasswordHasher = (*auth.Hasher)(nil)
	_ TokenIssuer    = (*auth.TokenCodec)(nil)
)
