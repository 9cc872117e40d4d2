package account

import (
	"context"
	"errors"

	domain "carpa/internal/domain/account"
)

// ErrEmailTaken is returned by Save when another account already uses the email.
var ErrEmailTaken = errors.New("an account with this email already exists")

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
