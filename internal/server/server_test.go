package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example/storefront/internal/auth"
	"example/storefront/internal/config"
	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/realtime"
	"example/storefront/internal/repository"

	_ "github.com/mattn/go-sqlite3"
)

func init() {
	// Initialize logger for tests
	logger.InitDev()
}

type testEnv struct {
	srv    *httptest.Server
	db     *sql.DB
	tokens *auth.Tokens
	hub    *realtime.Hub
}

// newTestEnv stands the whole HTTP surface up over an in-memory SQLite
// database
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
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

	cfg := config.Config{JWTSecret: "test-secret", JWTTTL: time.Hour}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	hub := realtime.NewHub(CatalogStock{DB: db})
	t.Cleanup(hub.Shutdown)

	api := NewServer(db, cfg, tokens, realtime.NewHandler(hub, nil))
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, tokens: tokens, hub: hub}
}

func (e *testEnv) addUser(t *testing.T, email, password, role string) (int64, string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	id, err := repository.AddUser(e.db, models.User{Name: "Test", Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	token, err := e.tokens.Generate(id, role)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return id, token
}

func (e *testEnv) addProduct(t *testing.T, title string, price float64, stock int) int64 {
	t.Helper()

	id, err := repository.AddProduct(e.db, models.Product{
		Title: title, Description: "test product", Image: "/images/test.jpg", Price: price, Stock: stock,
	})
	if err != nil {
		t.Fatalf("AddProduct failed: %v", err)
	}
	return id
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}
