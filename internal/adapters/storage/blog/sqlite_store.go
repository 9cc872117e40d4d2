package blog

import (
	"context"
	"database/sql"
	"fmt"

	"carpa/internal/adapters/storage"
	domain "carpa/internal/domain/blog"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const postColumns = "id, title, content, image_url, published, created_at"

// GetByID retrieves a post.
// POST: Returns the entity or an error wrapping sql.ErrNoRows
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM blog_post WHERE id = ?", id)
	p, err := scanPost(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Post{}, fmt.Errorf("post not found: %w", err)
	}
	return p, err
}

// Save inserts or updates a post.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blog_post (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, content=excluded.content, image_url=excluded.image_url,
		   published=excluded.published`,
		p.ID, p.Title, p.Content, p.ImageURL, storage.BoolToInt(p.Published), storage.FormatTime(p.CreatedAt))
	return err
}

// Delete removes a post.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM blog_post WHERE id = ?", id)
	return err
}

// List returns posts newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Post, error) {
	query := "SELECT " + postColumns + " FROM blog_post"
	var args []any
	if filter.PublishedOnly {
		query += " WHERE published = 1"
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

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPost(scan func(dest ...any) error) (domain.Post, error) {
	var p domain.Post
	var published int
	var createdAt string
	if err := scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &published, &createdAt); err != nil {
		return domain.Post{}, err
	}
	p.Published = published == 1
	p.CreatedAt, _ = storage.ParseTime(createdAt)
	return p, nil
}
