package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"carpa/internal/adapters/storage"
	domain "carpa/internal/domain/booking"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db    storage.SQLDB
	newID func() string
	now   func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, newID: uuid.NewString, now: time.Now}
}

const bookingColumns = "id, user_id, booking_date, time_slot, status, created_at"

// ListBookings returns userID's bookings with from <= date <= to.
// PRE: from and to are YYYY-MM-DD
// POST: results are ordered by date; slot order is left to the caller
func (s *SQLiteStore) ListBookings(ctx context.Context, userID, from, to string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM booking
		 WHERE user_id = ? AND booking_date >= ? AND booking_date <= ?
		 ORDER BY booking_date`, userID, from, to)
}

// CreateBooking inserts a confirmed booking and returns it with its new id.
// PRE: date is YYYY-MM-DD, slot is in the timetable
// POST: the row exists, or domain.ErrAlreadyBooked if it already did
func (s *SQLiteStore) CreateBooking(ctx context.Context, userID, date, slot string) (domain.Booking, error) {
	b := domain.Booking{
		ID:        s.newID(),
		UserID:    userID,
		Date:      date,
		Slot:      slot,
		Status:    domain.StatusConfirmed,
		CreatedAt: s.now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return domain.Booking{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Date, b.Slot, b.Status, storage.FormatTime(b.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.Booking{}, domain.ErrAlreadyBooked
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// DeleteBooking removes the booking identified by (userID, date, slot).
// POST: no such row exists
func (s *SQLiteStore) DeleteBooking(ctx context.Context, userID, date, slot string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM booking WHERE user_id = ? AND booking_date = ? AND time_slot = ?",
		userID, date, slot)
	return err
}

// ListUpcoming returns userID's bookings on or after from.
func (s *SQLiteStore) ListUpcoming(ctx context.Context, userID, from string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM booking
		 WHERE user_id = ? AND booking_date >= ?
		 ORDER BY booking_date`, userID, from)
}

// ListOnDate returns every booking on date.
func (s *SQLiteStore) ListOnDate(ctx context.Context, date string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM booking WHERE booking_date = ? ORDER BY user_id`, date)
}

// List returns all bookings by date ascending.
// PRE: filter.Limit > 0
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+bookingColumns+` FROM booking
		 ORDER BY booking_date, created_at LIMIT ? OFFSET ?`, filter.Limit, filter.Offset)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(rows *sql.Rows) (domain.Booking, error) {
	var b domain.Booking
	var createdAt string
	if err := rows.Scan(&b.ID, &b.UserID, &b.Date, &b.Slot, &b.Status, &createdAt); err != nil {
		return domain.Booking{}, err
	}
	b.CreatedAt, _ = storage.ParseTime(createdAt)
	return b, nil
}
