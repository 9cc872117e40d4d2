package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carpa/internal/domain/blog"
)

// PostStoreForOrchestrator defines the store interface needed by blog orchestrators.
type PostStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (blog.Post, error)
	Save(ctx context.Context, p blog.Post) error
	Delete(ctx context.Context, id string) error
}

// CreatePostInput carries input for creating a post.
type CreatePostInput struct {
	Title     string
	Content   string
	ImageURL  string
	Published bool
}

// CreatePostDeps holds dependencies for CreatePost.
type CreatePostDeps struct {
	PostStore  PostStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreatePost creates a blog post.
// PRE: Title and Content are non-empty
// POST: Post persisted with generated ID
func ExecuteCreatePost(ctx context.Context, input CreatePostInput, deps CreatePostDeps) (blog.Post, error) {
	p := blog.Post{
		ID:        deps.GenerateID(),
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		Published: input.Published,
		CreatedAt: deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return blog.Post{}, err
	}
	if err := deps.PostStore.Save(ctx, p); err != nil {
		return blog.Post{}, err
	}
	slog.Info("blog_event", "event", "post_created", "post_id", p.ID, "published", p.Published)
	return p, nil
}

// ExecuteSetPostPublished publishes or unpublishes a post.
// PRE: id refers to an existing post
// POST: Post.Published == published
func ExecuteSetPostPublished(ctx context.Context, id string, published bool, store PostStoreForOrchestrator) error {
	p, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Published = published
	if err := store.Save(ctx, p); err != nil {
		return err
	}
	slog.Info("blog_event", "event", "post_visibility_changed", "post_id", id, "published", published)
	return nil
}

// ExecuteDeletePost removes a post.
func ExecuteDeletePost(ctx context.Context, id string, store PostStoreForOrchestrator) error {
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("blog_event", "event", "post_deleted", "post_id", id)
	return nil
}
