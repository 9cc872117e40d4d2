package storage

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestMigrateDB_CreatesTables verifies a fresh database reaches the latest version.
func TestMigrateDB_CreatesTables(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := MigrateDB(ctx, db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	want := []string{"account", "blog_post", "booking", "professor", "review", "schema_version"}
	got := tableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("tables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table %d = %s, want %s", i, got[i], want[i])
		}
	}
	v, err := SchemaVersion(ctx, db)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_Idempotent verifies a second run applies nothing.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := MigrateDB(ctx, db); err != nil {
		t.Fatalf("first MigrateDB: %v", err)
	}
	if err := MigrateDB(ctx, db); err != nil {
		t.Fatalf("second MigrateDB: %v", err)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", n, len(migrations))
	}
}

// TestBookingUnique verifies the store-level guarantee against double booking.
func TestBookingUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := MigrateDB(ctx, db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	insert := "INSERT INTO booking (id, user_id, booking_date, time_slot, created_at) VALUES (?, ?, ?, ?, ?)"
	now := FormatTime(time.Now())
	if _, err := db.Exec(insert, "a", "u1", "2024-06-04", "8:30", now); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(insert, "b", "u1", "2024-06-04", "8:30", now)
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if _, err := db.Exec(insert, "c", "u2", "2024-06-04", "8:30", now); err != nil {
		t.Errorf("another user must be able to book the same class: %v", err)
	}
}

// TestParseTime verifies the accepted layouts.
func TestParseTime(t *testing.T) {
	want := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	for _, s := range []string{FormatTime(want), "2024-06-03T09:30:00Z", "2024-06-03 09:30:00"} {
		got, err := ParseTime(s)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", s, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTime(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected error for garbage input")
	}
	if NullableTime(time.Time{}) != nil {
		t.Error("expected zero time to be stored as NULL")
	}
}
