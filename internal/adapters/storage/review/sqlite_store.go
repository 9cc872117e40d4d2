package review

import (
	"context"
	"database/sql"
	"fmt"

	"carpa/internal/adapters/storage"
	domain "carpa/internal/domain/review"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const reviewColumns = "id, user_id, rating, comment, approved, created_at"

// GetByID retrieves a review.
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Review, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM review WHERE id = ?", id)
	r, err := scanReview(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Review{}, fmt.Errorf("review not found: %w", err)
	}
	return r, err
}

// Save inserts or updates a review.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, r domain.Review) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review (`+reviewColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   rating=excluded.rating, comment=excluded.comment, approved=excluded.approved`,
		r.ID, r.UserID, r.Rating, r.Comment, storage.BoolToInt(r.Approved), storage.FormatTime(r.CreatedAt))
	return err
}

// Delete removes a review.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM review WHERE id = ?", id)
	return err
}

// List returns reviews newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Review, error) {
	query := "SELECT " + reviewColumns + " FROM review"
	var args []any
	if filter.ApprovedOnly {
		query += " WHERE approved = 1"
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReview(scan func(dest ...any) error) (domain.Review, error) {
	var r domain.Review
	var approved int
	var createdAt string
	if err := scan(&r.ID, &r.UserID, &r.Rating, &r.Comment, &approved, &createdAt); err != nil {
		return domain.Review{}, err
	}
	r.Approved = approved == 1
	r.CreatedAt, _ = storage.ParseTime(createdAt)
	return r, nil
}
