package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("%w: email is required", common.ErrValidation), http.StatusBadRequest, "email is required"},
		{fmt.Errorf("email %w", common.ErrConflict), http.StatusConflict, "Email already registered"},
		{common.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{common.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired), http.StatusUnauthorized, "Unauthorized"},
		{common.ErrorNotFound, http.StatusNotFound, "Not found"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		code, msg := statusFor(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

func TestTokenFailure(t *testing.T) {
	assert.Equal(t, "expired", tokenFailure(fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)))
	assert.Equal(t, "signature", tokenFailure(fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenSignature)))
	assert.Equal(t, "malformed", tokenFailure(fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenMalformed)))
}
