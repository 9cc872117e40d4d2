package projections

import (
	"context"
	"time"

	accountStore "carpa/internal/adapters/storage/account"
	blogStore "carpa/internal/adapters/storage/blog"
	bookingStore "carpa/internal/adapters/storage/booking"
	reviewStore "carpa/internal/adapters/storage/review"
	"carpa/internal/application/listutil"
	"carpa/internal/domain/account"
	"carpa/internal/domain/blog"
	"carpa/internal/domain/booking"
	"carpa/internal/domain/professor"
	"carpa/internal/domain/review"
)

// AdminUserLimit is how many accounts the admin console lists.
const AdminUserLimit = 500

// GetAdminPanelDeps holds dependencies for the admin projection.
type GetAdminPanelDeps struct {
	AccountStore   AccountStore
	BookingStore   BookingListStore
	PostStore      PostStore
	ProfessorStore ProfessorStore
	ReviewStore    ReviewStore
	BookingPage    listutil.Page
	Now            func() time.Time
}

// AdminBooking is a booking with the member it belongs to.
type AdminBooking struct {
	booking.Booking
	Email    string
	FullName string
	Past     bool
}

// AdminReview is a review with its author.
type AdminReview struct {
	review.Review
	Author string
}

// AdminPanelResult carries every table of the admin console.
type AdminPanelResult struct {
	Users       []account.Account
	Bookings    []AdminBooking
	BookingPage listutil.Page
	Posts       []blog.Post
	Professors  []professor.Professor
	Reviews     []AdminReview
	Pending     int // reviews awaiting approval
}

// GetAdminPanel loads the admin console.
// PRE: caller is an admin
// POST: Bookings holds at most BookingPage.PerPage rows by date ascending
func GetAdminPanel(ctx context.Context, deps GetAdminPanelDeps) (AdminPanelResult, error) {
	var res AdminPanelResult
	var err error

	if res.Users, err = deps.AccountStore.List(ctx, accountStore.ListFilter{Limit: AdminUserLimit}); err != nil {
		return AdminPanelResult{}, err
	}

	page := deps.BookingPage
	if page.PerPage <= 0 {
		page = listutil.Page{Number: 1, PerPage: listutil.DefaultPerPage}
	}
	bookings, err := deps.BookingStore.List(ctx, bookingStore.ListFilter{Limit: page.Limit(), Offset: page.Offset()})
	if err != nil {
		return AdminPanelResult{}, err
	}
	bookings, res.BookingPage = listutil.Fit(page, bookings)
	names := newNameResolver(deps.AccountStore)
	now := deps.Now()
	for _, b := range bookings {
		a := names.lookup(ctx, b.UserID)
		res.Bookings = append(res.Bookings, AdminBooking{
			Booking:  b,
			Email:    a.Email,
			FullName: a.FullName,
			Past:     booking.IsPast(b.Date, now),
		})
	}

	if res.Posts, err = deps.PostStore.List(ctx, blogStore.ListFilter{}); err != nil {
		return AdminPanelResult{}, err
	}
	if res.Professors, err = deps.ProfessorStore.List(ctx, false); err != nil {
		return AdminPanelResult{}, err
	}

	reviews, err := deps.ReviewStore.List(ctx, reviewStore.ListFilter{})
	if err != nil {
		return AdminPanelResult{}, err
	}
	for _, r := range reviews {
		if !r.Approved {
			res.Pending++
		}
		author := names.lookup(ctx, r.UserID)
		res.Reviews = append(res.Reviews, AdminReview{Review: r, Author: author.DisplayName()})
	}
	return res, nil
}
