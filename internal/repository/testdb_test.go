package repository

import (
	"database/sql"
	"testing"

	"example/storefront/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

func init() {
	// Initialize logger for tests
	logger.InitDev()
}

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A single connection keeps every statement on the same in-memory
	// database and serializes concurrent transactions.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE product (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		price REAL NOT NULL,
		discount INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'Uncategorized',
		image TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE "order" (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		total REAL NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE order_item (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id TEXT NOT NULL,
		product_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		price REAL NOT NULL,
		quantity INTEGER NOT NULL,
		subtotal REAL NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}
