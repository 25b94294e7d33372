// Package dbtest opens the integration-test database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"auction-house/internal/db"
	"auction-house/migrations"
)

// Open connects to TEST_DATABASE_URL, applies the schema and empties every
// application table. It skips the test when the variable is unset so a
// plain `go test ./...` never touches a live database.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE flash_messages, users, lots RESTART IDENTITY CASCADE;
		UPDATE display_settings SET banner = '', current_lot_id = NULL, updated_at = now();
	`)
	if err != nil {
		t.Fatalf("reset test database: %v", err)
	}
	return pool
}
