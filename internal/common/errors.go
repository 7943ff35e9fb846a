// Package common defines shared constants and sentinel errors used across
// client and server layers of GophAuth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrValidation marks malformed input rejected before it reaches a service.
	ErrValidation = errors.New("validation error")

	// ErrConflict is returned when a unique identity key (email) is taken.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	// The two cases must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned when a protected call has no usable credential.
	ErrUnauthorized = errors.New("unauthorized")

	// Token errors. Every specific token error wraps ErrInvalidToken.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")

	// ErrNetwork is a transport failure: no response was received.
	ErrNetwork = errors.New("network error")
)
