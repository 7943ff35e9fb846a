package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newCodec(t *testing.T, secret string, validity time.Duration, now time.Time) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec([]byte(secret), validity)
	require.NoError(t, err)
	return c.WithClock(fixedClock(now))
}

func TestNewTokenCodec_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec(nil, time.Hour)
	require.Error(t, err)

	_, err = NewTokenCodec([]byte("s"), 0)
	require.Error(t, err)

	c, err := NewTokenCodec([]byte("s"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, c.Validity())
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, "super-secret", 24*time.Hour, now)

	tok, exp, err := c.Issue("user-123", "a@b.io")
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)
	assert.Equal(t, 2, strings.Count(tok, "."))

	claims, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "a@b.io", claims.Email)
	assert.Equal(t, now, claims.IssuedAt.Time.UTC())
	assert.Equal(t, exp, claims.ExpiresAt.Time.UTC())
	assert.Len(t, claims.ID, 32)

	tok2, _, err := c.Issue("user-123", "a@b.io")
	require.NoError(t, err)
	assert.NotEqual(t, tok, tok2, "tokens issued in the same second must differ")
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newCodec(t, "secret", time.Hour, issued)

	tok, exp, err := c.Issue("u1", "u1@x.io")
	require.NoError(t, err)

	c.WithClock(fixedClock(exp.Add(-time.Second)))
	_, err = c.Verify(tok)
	require.NoError(t, err)

	c.WithClock(fixedClock(exp.Add(time.Second)))
	_, err = c.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	issuer := newCodec(t, "right-secret", time.Hour, now)
	verifier := newCodec(t, "wrong-secret", time.Hour, now)

	tok, _, err := issuer.Issue("u2", "u2@x.io")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, common.ErrTokenSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	c := newCodec(t, "secret", time.Hour, time.Now())

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := c.Verify(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, tok)
		assert.ErrorIs(t, err, common.ErrTokenMalformed, tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	c := newCodec(t, "secret", time.Hour, now)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u3",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Verify(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	assert.ErrorIs(t, err, common.ErrTokenSignature)
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	c := newCodec(t, "secret", time.Hour, time.Now())

	tok, _, err := c.Issue("", "nobody@x.io")
	require.NoError(t, err)

	_, err = c.Verify(tok)
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}
