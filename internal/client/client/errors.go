package client

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d | %s", e.Status, e.Message)
}

// Unwrap maps the status onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrConflict
	default:
		return common.ErrorInternal
	}
}
