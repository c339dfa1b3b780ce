package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"example/storefront/internal/models"
	"example/storefront/internal/repository"
)

func (e *testEnv) getInto(t *testing.T, path, token string, out any) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodGet, "/", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["message"] != "E-commerce API is running" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestSignupAndLogin(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ana", "email": "Ana@Example.com", "password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %v", resp.StatusCode, body)
	}
	if body["token"] == nil || body["token"] == "" {
		t.Error("signup should return a token")
	}

	// Duplicate email, case-insensitively
	resp, _ = e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "secret123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", resp.StatusCode)
	}

	// Short password
	resp, _ = e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "short",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("short password: expected 400, got %d", resp.StatusCode)
	}

	resp, body = e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %v", resp.StatusCode, body)
	}

	resp, _ = e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-pass",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.addUser(t, "user@example.com", "secret123", models.RoleUser)

	resp, body := e.request(t, http.MethodGet, "/api/auth/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	user := body["user"].(map[string]any)
	if user["email"] != "user@example.com" {
		t.Errorf("unexpected profile: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash must never be serialized")
	}

	resp, _ = e.request(t, http.MethodPut, "/api/auth/profile", token, map[string]string{
		"name": "Renamed", "email": "renamed@example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, http.MethodPut, "/api/auth/change-password", token, map[string]string{
		"currentPassword": "secret123", "newPassword": "newsecret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, http.MethodPut, "/api/auth/change-password", token, map[string]string{
		"currentPassword": "secret123", "newPassword": "another",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("stale current password: expected 401, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, http.MethodGet, "/api/auth/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", resp.StatusCode)
	}
}

func TestProductEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, adminToken := e.addUser(t, "admin@example.com", "secret123", models.RoleAdmin)
	_, userToken := e.addUser(t, "user@example.com", "secret123", models.RoleUser)

	payload := map[string]any{
		"title": "Desk Lamp", "description": "LED lamp", "price": 32.0,
		"discount": 5, "image": "/images/lamp.jpg", "stock": 80, "category": "Home",
	}

	resp, _ := e.request(t, http.MethodPost, "/api/products", userToken, payload)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin create: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = e.request(t, http.MethodPost, "/api/products", "", payload)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", resp.StatusCode)
	}

	resp, body := e.request(t, http.MethodPost, "/api/products", adminToken, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %v", resp.StatusCode, body)
	}
	created := body["product"].(map[string]any)
	productID := int64(created["id"].(float64))

	var products []models.Product
	e.getInto(t, "/api/products", "", &products)
	if len(products) != 1 || products[0].Title != "Desk Lamp" {
		t.Errorf("unexpected catalog: %+v", products)
	}

	var product models.Product
	resp = e.getInto(t, "/api/products/1", "", &product)
	if resp.StatusCode != http.StatusOK || product.Stock != 80 {
		t.Errorf("get product: status %d, product %+v", resp.StatusCode, product)
	}

	resp, _ = e.request(t, http.MethodGet, "/api/products/not-a-number", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = e.request(t, http.MethodGet, "/api/products/999", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing product: expected 404, got %d", resp.StatusCode)
	}

	resp, body = e.request(t, http.MethodPut, "/api/products/1", adminToken, map[string]any{"stock": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %v", resp.StatusCode, body)
	}
	updated, err := repository.GetProductByID(e.db, productID)
	if err != nil {
		t.Fatalf("GetProductByID failed: %v", err)
	}
	if updated.Stock != 5 || updated.Title != "Desk Lamp" {
		t.Errorf("partial update went wrong: %+v", updated)
	}

	resp, _ = e.request(t, http.MethodPut, "/api/products/1", adminToken, map[string]any{"discount": 250})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid discount: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, http.MethodDelete, "/api/products/1", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = e.request(t, http.MethodDelete, "/api/products/1", adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("double delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestOrderEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.addUser(t, "buyer@example.com", "secret123", models.RoleUser)
	productID := e.addProduct(t, "Ceramic Mug", 14.50, 5)

	resp, body := e.request(t, http.MethodPost, "/api/orders", token, map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": 2}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %v", resp.StatusCode, body)
	}

	p, _ := repository.GetProductByID(e.db, productID)
	if p.Stock != 3 {
		t.Errorf("expected stock 3 after checkout, got %d", p.Stock)
	}

	resp, _ = e.request(t, http.MethodPost, "/api/orders", token, map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": 10}},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("oversell: expected 409, got %d", resp.StatusCode)
	}

	resp, _ = e.request(t, http.MethodPost, "/api/orders", token, map[string]any{"items": []map[string]any{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty order: expected 400, got %d", resp.StatusCode)
	}

	var orders []models.Order
	e.getInto(t, "/api/orders", token, &orders)
	if len(orders) != 1 || len(orders[0].Items) != 1 {
		t.Errorf("unexpected orders: %+v", orders)
	}

	resp, _ = e.request(t, http.MethodGet, "/api/orders", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous orders: expected 401, got %d", resp.StatusCode)
	}
}
