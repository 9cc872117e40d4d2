package professor

import (
	"context"
	"database/sql"
	"fmt"

	"carpa/internal/adapters/storage"
	domain "carpa/internal/domain/professor"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const professorColumns = "id, name, specialty, bio, photo_url, active, created_at"

// GetByID retrieves a professor.
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Professor, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+professorColumns+" FROM professor WHERE id = ?", id)
	p, err := scanProfessor(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Professor{}, fmt.Errorf("professor not found: %w", err)
	}
	return p, err
}

// Save inserts or updates a professor.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Professor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO professor (`+professorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, specialty=excluded.specialty, bio=excluded.bio,
		   photo_url=excluded.photo_url, active=excluded.active`,
		p.ID, p.Name, p.Specialty, p.Bio, p.PhotoURL, storage.BoolToInt(p.Active), storage.FormatTime(p.CreatedAt))
	return err
}

// Delete removes a professor.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM professor WHERE id = ?", id)
	return err
}

// List returns professors in the order they joined.
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Professor, error) {
	query := "SELECT " + professorColumns + " FROM professor"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Professor
	for rows.Next() {
		p, err := scanProfessor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfessor(scan func(dest ...any) error) (domain.Professor, error) {
	var p domain.Professor
	var active int
	var createdAt string
	if err := scan(&p.ID, &p.Name, &p.Specialty, &p.Bio, &p.PhotoURL, &active, &createdAt); err != nil {
		return domain.Professor{}, err
	}
	p.Active = active == 1
	p.CreatedAt, _ = storage.ParseTime(createdAt)
	return p, nil
}
