package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"carpa/internal/domain/review"
)

// ReviewStoreForOrchestrator defines the store interface needed by review orchestrators.
type ReviewStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (review.Review, error)
	Save(ctx context.Context, r review.Review) error
	Delete(ctx context.Context, id string) error
}

// SubmitReviewInput carries a member's review.
type SubmitReviewInput struct {
	UserID  string
	Rating  int
	Comment string
}

// SubmitReviewDeps holds dependencies for SubmitReview.
type SubmitReviewDeps struct {
	ReviewStore ReviewStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteSubmitReview stores a review awaiting approval.
// PRE: UserID is the signed-in member; Rating in 1..5
// POST: Review persisted with Approved == false
func ExecuteSubmitReview(ctx context.Context, input SubmitReviewInput, deps SubmitReviewDeps) (review.Review, error) {
	r := review.Review{
		ID:        deps.GenerateID(),
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: deps.Now(),
	}
	if err := r.Validate(); err != nil {
		return review.Review{}, err
	}
	if err := deps.ReviewStore.Save(ctx, r); err != nil {
		return review.Review{}, err
	}
	slog.Info("review_event", "event", "review_submitted", "review_id", r.ID, "user_id", r.UserID, "rating", r.Rating)
	return r, nil
}

// ExecuteApproveReview makes a review public.
// PRE: id refers to a review awaiting approval
// POST: Review.Approved == true
func ExecuteApproveReview(ctx context.Context, id string, store ReviewStoreForOrchestrator) error {
	r, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.Approve(); err != nil {
		return err
	}
	if err := store.Save(ctx, r); err != nil {
		return err
	}
	slog.Info("review_event", "event", "review_approved", "review_id", id)
	return nil
}

// ExecuteDeleteReview removes a review.
func ExecuteDeleteReview(ctx context.Context, id string, store ReviewStoreForOrchestrator) error {
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("review_event", "event", "review_deleted", "review_id", id)
	return nil
}
