package review

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"carpa/internal/adapters/storage"
	domain "carpa/internal/domain/review"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	return NewSQLiteStore(db)
}

// TestList_ApprovedNewestFirst verifies the public listing and its limit.
func TestList_ApprovedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r := domain.Review{
			ID: string(rune('a' + i)), UserID: "u1", Rating: 5, Comment: "Genial",
			Approved: i != 2, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	got, err := s.List(ctx, ListFilter{ApprovedOnly: true, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != "e" || got[1].ID != "d" || got[2].ID != "b" {
		t.Errorf("unexpected reviews %+v", got)
	}
	all, _ := s.List(ctx, ListFilter{})
	if len(all) != 5 {
		t.Errorf("len = %d, want 5", len(all))
	}
}

// TestSave_ApproveAndDelete verifies the moderation flow at the store level.
func TestSave_ApproveAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := domain.Review{ID: "r1", UserID: "u1", Rating: 4, Comment: "Buen ambiente", CreatedAt: time.Now()}
	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	r.Approved = true
	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, _ := s.GetByID(ctx, "r1")
	if !got.Approved || got.Rating != 4 {
		t.Errorf("unexpected review %+v", got)
	}
	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "r1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestSave_RatingCheck verifies the schema rejects out-of-range ratings.
func TestSave_RatingCheck(t *testing.T) {
	s := newTestStore(t)
	err := s.Save(context.Background(), domain.Review{ID: "r1", UserID: "u1", Rating: 9, Comment: "x", CreatedAt: time.Now()})
	if err == nil {
		t.Error("expected CHECK constraint failure")
	}
}
