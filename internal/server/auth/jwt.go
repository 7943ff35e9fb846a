// Package auth holds the server's credential primitives: the bearer token
// codec and the password hasher.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: registered claims (sub, iat, exp) plus the
// user's email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenCodec issues and verifies HS256 bearer tokens with a fixed lifetime.
// It keeps no state besides the secret, so one instance serves every request.
type TokenCodec struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

// NewTokenCodec builds a codec. An empty secret is rejected.
func NewTokenCodec(secretKey []byte, validity time.Duration) (*TokenCodec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}
	return &TokenCodec{secretKey: secretKey, validity: validity, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

// Validity returns the fixed token lifetime.
func (c *TokenCodec) Validity() time.Duration {
	return c.validity
}

// Issue signs a token for the given subject and email. It returns the token
// together with its expiry time.
func (c *TokenCodec) Issue(subject, email string) (string, time.Time, error) {
	issuedAt := c.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.validity)

	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", time.Time{}, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Errors wrap common.ErrInvalidToken together with one of
// common.ErrTokenMalformed, common.ErrTokenSignature or common.ErrTokenExpired.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secretKey, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenMalformed)
	}

	return claims, nil
}

func classifyTokenError(err error) error {
	var reason error
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		reason = common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		reason = common.ErrTokenSignature
	default:
		reason = common.ErrTokenMalformed
	}
	return fmt.Errorf("%w: %w: %v", common.ErrInvalidToken, reason, err)
}
