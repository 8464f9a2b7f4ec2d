// Package testutil provides a migrated SQLite database for integration tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"morak/internal/database"
	"morak/migrations"
)

// SetupTestDB opens a fresh SQLite database in a temporary directory and
// applies the embedded migrations. The test is skipped in -short mode.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrations.FS, zap.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// InsertMember creates a member row directly and returns its id
func InsertMember(t *testing.T, db *database.DB, providerID, nickname string) int64 {
	t.Helper()

	id, err := db.ExecReturningID(context.Background(),
		"INSERT INTO members (provider_id, social_type, email, nickname, profile_picture) VALUES (?, 'github', ?, ?, ?)",
		providerID, nickname+"@example.com", nickname, nickname+".png")
	if err != nil {
		t.Fatalf("failed to insert member %s: %v", providerID, err)
	}
	return id
}
