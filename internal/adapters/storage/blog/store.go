package blog

import (
	"context"

	domain "carpa/internal/domain/blog"
)

// Store persists blog posts.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Post, error)
	Save(ctx context.Context, p domain.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Post, error)
}

// ListFilter narrows List. Posts come newest first.
type ListFilter struct {
	PublishedOnly bool
	Limit         int // zero means no limit
}
