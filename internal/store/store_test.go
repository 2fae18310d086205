// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"autopress/internal/database"
	"autopress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "autopress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "autopress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testSite inserts a site for the test and registers cleanup. Deleting
// the site cascades to its schedules, posts, and generation requests.
func testSite(t *testing.T, db *sql.DB) *models.Site {
	t.Helper()

	sites := NewSiteStore(db)
	site, err := sites.Create(&models.Site{
		Name:        "store-test-" + uuid.NewString()[:8],
		URL:         "https://store-test.example.com",
		APIUsername: "bot",
		APIPassword: "secret",
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("create test site: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM sites WHERE id = $1", site.ID)
	})
	return site
}

// connectSite flips a test site into the connected state so the sweep
// queries consider it.
func connectSite(t *testing.T, db *sql.DB, site *models.Site) {
	t.Helper()
	if err := NewSiteStore(db).SetConnectionStatus(site.ID, models.ConnectionConnected); err != nil {
		t.Fatalf("set connection status: %v", err)
	}
}
