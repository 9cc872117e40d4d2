package review

import (
	"context"

	domain "carpa/internal/domain/review"
)

// Store persists reviews.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Review, error)
	Save(ctx context.Context, r domain.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Review, error)
}

// ListFilter narrows List. Reviews come newest first.
type ListFilter struct {
	ApprovedOnly bool
	Limit        int // zero means no limit
}
