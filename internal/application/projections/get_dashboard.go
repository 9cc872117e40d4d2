package projections

import (
	"context"
	"sort"
	"time"

	"carpa/internal/domain/booking"
)

// GetDashboardQuery carries input for the member dashboard.
type GetDashboardQuery struct {
	AccountID string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	AccountStore AccountStore
	BookingStore UpcomingBookingStore
	Now          func() time.Time // in the gym's time zone
}

// DashboardResult is what the member dashboard shows.
type DashboardResult struct {
	Greeting string // full name, or "ATLETA"
	Email    string
	IsAdmin  bool
	Upcoming []booking.Booking
}

// GetDashboard returns the member's greeting and bookings from today onwards.
// PRE: AccountID is the signed-in member
// POST: Upcoming is ordered by date, then by timetable position
func GetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	acct, err := deps.AccountStore.GetByID(ctx, query.AccountID)
	if err != nil {
		return DashboardResult{}, err
	}
	upcoming, err := deps.BookingStore.ListUpcoming(ctx, query.AccountID, booking.Today(deps.Now()))
	if err != nil {
		return DashboardResult{}, err
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return booking.Less(upcoming[i], upcoming[j]) })

	return DashboardResult{
		Greeting: acct.DisplayName(),
		Email:    acct.Email,
		IsAdmin:  acct.IsAdmin(),
		Upcoming: upcoming,
	}, nil
}
