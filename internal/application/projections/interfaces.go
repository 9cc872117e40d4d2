package projections

import (
	"context"

	accountStore "carpa/internal/adapters/storage/account"
	blogStore "carpa/internal/adapters/storage/blog"
	bookingStore "carpa/internal/adapters/storage/booking"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/domain/account"
	"carpa/internal/domain/blog"
	"carpa/internal/domain/booking"
	"carpa/internal/domain/professor"
	"carpa/internal/domain/review"
)

// AccountStore interface for account queries.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	List(ctx context.Context, filter accountStore.ListFilter) ([]account.Account, error)
}

// UpcomingBookingStore interface for a member's future bookings.
type UpcomingBookingStore interface {
	ListUpcoming(ctx context.Context, userID, from string) ([]booking.Booking, error)
}

// BookingListStore interface for the admin booking listing.
type BookingListStore interface {
	List(ctx context.Context, filter bookingStore.ListFilter) ([]booking.Booking, error)
}

// PostStore interface for blog queries.
type PostStore interface {
	List(ctx context.Context, filter blogStore.ListFilter) ([]blog.Post, error)
}

// ProfessorStore interface for professor queries.
type ProfessorStore interface {
	List(ctx context.Context, activeOnly bool) ([]professor.Professor, error)
}

// ReviewStore interface for review queries.
type ReviewStore interface {
	List(ctx context.Context, filter reviewStore.ListFilter) ([]review.Review, error)
}

// nameResolver caches account lookups for one projection run.
type nameResolver struct {
	store AccountStore
	seen  map[string]account.Account
}

func newNameResolver(store AccountStore) *nameResolver {
	return &nameResolver{store: store, seen: make(map[string]account.Account)}
}

// lookup returns the account or a placeholder when it no longer exists.
func (r *nameResolver) lookup(ctx context.Context, id string) account.Account {
	if a, ok := r.seen[id]; ok {
		return a
	}
	a, err := r.store.GetByID(ctx, id)
	if err != nil {
		a = account.Account{ID: id, Email: "(cuenta eliminada)"}
	}
	r.seen[id] = a
	return a
}
