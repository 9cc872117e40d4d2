package booking

import (
	"context"

	domain "carpa/internal/domain/booking"
)

// Store persists bookings. CreateBooking reports a duplicate
// (user, date, slot) as domain.ErrAlreadyBooked. DeleteBooking of a row that
// does not exist is not an error.
type Store interface {
	ListBookings(ctx context.Context, userID, from, to string) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, userID, date, slot string) (domain.Booking, error)
	DeleteBooking(ctx context.Context, userID, date, slot string) error
	ListUpcoming(ctx context.Context, userID, from string) ([]domain.Booking, error)
	ListOnDate(ctx context.Context, date string) ([]domain.Booking, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)
}

// ListFilter carries paging for the admin listing, ordered by date ascending.
type ListFilter struct {
	Limit  int
	Offset int
}
