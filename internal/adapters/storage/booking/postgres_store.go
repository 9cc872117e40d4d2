package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "carpa/internal/domain/booking"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore implements Store against a hosted Postgres bookings table.
// Dates travel as text and are cast at the boundary so no time zone ever
// touches a booking date.
type PostgresStore struct {
	pool  *pgxpool.Pool
	newID func() string
}

// NewPostgresStore connects to url. A non-nil tracer sees every statement.
// PRE: url is a pgx connection string
// POST: the pool answered a ping
func NewPostgresStore(ctx context.Context, url string, tracer pgx.QueryTracer) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	if tracer != nil {
		cfg.ConnConfig.Tracer = tracer
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, newID: uuid.NewString}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// EnsureSchema creates the bookings table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		booking_date DATE NOT NULL,
		time_slot TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'confirmed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, booking_date, time_slot)
	)`)
	return err
}

const pgColumns = "id::text, user_id, booking_date::text, time_slot, status, created_at"

// ListBookings returns userID's bookings with from <= date <= to.
func (s *PostgresStore) ListBookings(ctx context.Context, userID, from, to string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+pgColumns+` FROM bookings
		 WHERE user_id = $1 AND booking_date BETWEEN $2::text::date AND $3::text::date
		 ORDER BY booking_date`, userID, from, to)
}

// CreateBooking inserts a confirmed booking and returns the stored row.
// POST: the row exists, or domain.ErrAlreadyBooked if it already did
func (s *PostgresStore) CreateBooking(ctx context.Context, userID, date, slot string) (domain.Booking, error) {
	b := domain.Booking{ID: s.newID(), UserID: userID, Date: date, Slot: slot, Status: domain.StatusConfirmed}
	if err := b.Validate(); err != nil {
		return domain.Booking{}, err
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO bookings (id, user_id, booking_date, time_slot, status)
		 VALUES ($1, $2, $3::text::date, $4, $5)
		 RETURNING `+pgColumns,
		b.ID, b.UserID, b.Date, b.Slot, b.Status)
	created, err := scanPgBooking(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.Booking{}, domain.ErrAlreadyBooked
	}
	return created, err
}

// DeleteBooking removes the booking identified by (userID, date, slot).
func (s *PostgresStore) DeleteBooking(ctx context.Context, userID, date, slot string) error {
	_, err := s.pool.Exec(ctx,
		"DELETE FROM bookings WHERE user_id = $1 AND booking_date = $2::text::date AND time_slot = $3",
		userID, date, slot)
	return err
}

// ListUpcoming returns userID's bookings on or after from.
func (s *PostgresStore) ListUpcoming(ctx context.Context, userID, from string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+pgColumns+` FROM bookings
		 WHERE user_id = $1 AND booking_date >= $2::text::date
		 ORDER BY booking_date`, userID, from)
}

// ListOnDate returns every booking on date.
func (s *PostgresStore) ListOnDate(ctx context.Context, date string) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+pgColumns+` FROM bookings WHERE booking_date = $1::text::date ORDER BY user_id`, date)
}

// List returns all bookings by date ascending.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	return s.query(ctx,
		`SELECT `+pgColumns+` FROM bookings
		 ORDER BY booking_date, created_at LIMIT $1 OFFSET $2`, filter.Limit, filter.Offset)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanPgBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanPgBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var createdAt time.Time
	if err := row.Scan(&b.ID, &b.UserID, &b.Date, &b.Slot, &b.Status, &createdAt); err != nil {
		return domain.Booking{}, err
	}
	b.CreatedAt = createdAt.UTC()
	return b, nil
}
