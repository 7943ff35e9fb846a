// Package users is the credential store: persistence of user records behind
// a small interface with PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores credential records. Email uniqueness is enforced here:
// Create returns an error wrapping common.ErrConflict when the email is
// taken. Lookups of absent records return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Deactivate(ctx context.Context, id string) error
}
