package professor

import (
	"context"

	domain "carpa/internal/domain/professor"
)

// Store persists professors.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Professor, error)
	Save(ctx context.Context, p domain.Professor) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]domain.Professor, error)
}
