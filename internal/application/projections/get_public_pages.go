package projections

import (
	"context"
	"time"

	blogStore "carpa/internal/adapters/storage/blog"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/domain/blog"
	"carpa/internal/domain/professor"
	"carpa/internal/domain/review"
	"carpa/internal/domain/timetable"
)

// PublicReviewLimit is how many approved reviews the info page shows.
const PublicReviewLimit = 20

// ListPublishedPosts returns the public blog, newest first.
func ListPublishedPosts(ctx context.Context, store PostStore) ([]blog.Post, error) {
	return store.List(ctx, blogStore.ListFilter{PublishedOnly: true})
}

// ListActiveProfessors returns the professors shown on the team page.
func ListActiveProfessors(ctx context.Context, store ProfessorStore) ([]professor.Professor, error) {
	return store.List(ctx, true)
}

// GetInfoPageDeps holds dependencies for the info page.
type GetInfoPageDeps struct {
	AccountStore AccountStore
	ReviewStore  ReviewStore
	Now          func() time.Time // in the gym's time zone
}

// PublicReview is an approved review with its author's display name.
type PublicReview struct {
	review.Review
	Author string
}

// SessionRow is one line of the live timetable.
type SessionRow struct {
	timetable.Session
	Current bool
}

// InfoPageResult is the live timetable plus approved reviews.
type InfoPageResult struct {
	Sessions      []SessionRow
	InSession     bool
	Reviews       []PublicReview
	AverageRating float64
}

// GetInfoPage builds the info page.
// POST: at most one session is Current; Reviews holds at most PublicReviewLimit approved reviews
func GetInfoPage(ctx context.Context, deps GetInfoPageDeps) (InfoPageResult, error) {
	var res InfoPageResult
	current := timetable.CurrentSession(deps.Now())
	for i, s := range timetable.Sessions {
		res.Sessions = append(res.Sessions, SessionRow{Session: s, Current: i == current})
	}
	res.InSession = current >= 0

	reviews, err := deps.ReviewStore.List(ctx, reviewStore.ListFilter{ApprovedOnly: true, Limit: PublicReviewLimit})
	if err != nil {
		return InfoPageResult{}, err
	}
	names := newNameResolver(deps.AccountStore)
	total := 0
	for _, r := range reviews {
		author := names.lookup(ctx, r.UserID)
		res.Reviews = append(res.Reviews, PublicReview{Review: r, Author: author.DisplayName()})
		total += r.Rating
	}
	if len(reviews) > 0 {
		res.AverageRating = float64(total) / float64(len(reviews))
	}
	return res, nil
}
