package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"example/storefront/internal/auth"
	"example/storefront/internal/config"
	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/realtime"
	"example/storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server wires the REST API and the realtime upgrade endpoint
type Server struct {
	db     *sql.DB
	cfg    config.Config
	tokens *auth.Tokens
	ws     *realtime.Handler
}

// NewServer creates the HTTP surface over the given database and hub handler
func NewServer(db *sql.DB, cfg config.Config, tokens *auth.Tokens, ws *realtime.Handler) *Server {
	return &Server{db: db, cfg: cfg, tokens: tokens, ws: ws}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	corsOptions := cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = s.cfg.AllowedOrigins
		corsOptions.AllowCredentials = true
	} else {
		corsOptions.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOptions))

	authenticated := auth.Authenticate(s.tokens, s.db)

	r.Get("/", s.health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.login)
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.updateProfile)
			r.Put("/change-password", s.changePassword)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/{id}", s.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(authenticated, auth.RequireAdmin)
			r.Post("/", s.createProduct)
			r.Put("/{id}", s.updateProduct)
			r.Delete("/{id}", s.deleteProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/", s.createOrder)
		r.Get("/", s.listOrders)
	})

	r.Get("/ws", s.ws.ServeWS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "E-commerce API is running"})
}

// --- auth handlers ---

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required: name, email, and password")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Log.Errorw("Failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	id, err := repository.AddUser(s.db, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already registered. Please use a different email or login.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	created, err := repository.GetUserByID(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	token, err := s.tokens.Generate(created.ID, created.Role)
	if err != nil {
		logger.Log.Errorw("Failed to generate token", "user_id", created.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"token":   token,
		"user":    created,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := repository.GetUserByEmail(s.db, req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		logger.Log.Errorw("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	if err := repository.UpdateUserProfile(s.db, user.ID, req.Name, req.Email); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already registered. Please use a different email.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	updated, err := repository.GetUserByID(s.db, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if err := repository.UpdateUserPassword(s.db, user.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

// --- product handlers ---

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := repository.GetAllProducts(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := repository.GetProductByID(s.db, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// productPayload uses pointers so partial updates can tell absent fields from
// zero values.
type productPayload struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Discount    *int     `json:"discount"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock"`
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == nil || *req.Title == "" || req.Description == nil || *req.Description == "" ||
		req.Price == nil || req.Discount == nil || req.Image == nil || *req.Image == "" {
		writeError(w, http.StatusBadRequest, "All fields are required: title, description, price, discount, and image")
		return
	}

	product := models.Product{
		Title:       *req.Title,
		Description: *req.Description,
		Price:       *req.Price,
		Discount:    *req.Discount,
		Category:    "Uncategorized",
		Image:       *req.Image,
		Stock:       100,
	}
	if req.Category != nil && *req.Category != "" {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if msg, ok := validateProduct(product); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := repository.AddProduct(s.db, product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	created, err := repository.GetProductByID(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": created,
	})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := repository.GetProductByID(s.db, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	if req.Category != nil {
		product.Category = *req.Category
		if product.Category == "" {
			product.Category = "Uncategorized"
		}
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if msg, ok := validateProduct(product); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := repository.UpdateProduct(s.db, product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	updated, err := repository.GetProductByID(s.db, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": updated,
	})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := repository.GetProductByID(s.db, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	if err := repository.DeleteProduct(s.db, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product deleted successfully",
		"product": product,
	})
}

func validateProduct(p models.Product) (string, bool) {
	if p.Price < 0 {
		return "Price must be a valid positive number", false
	}
	if p.Discount < 0 || p.Discount > 100 {
		return "Discount must be a number between 0 and 100", false
	}
	if p.Stock < 0 {
		return "Stock must be a valid non-negative number", false
	}
	return "", true
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID format")
		return 0, false
	}
	return id, true
}

// --- order handlers ---

type orderRequest struct {
	Items []repository.CartItem `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Order must contain at least one item")
		return
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "Item quantity must be at least 1")
			return
		}
	}

	order, err := repository.CreateOrder(s.db, user.ID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			writeError(w, http.StatusConflict, "Insufficient stock for one or more items")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())

	orders, err := repository.GetOrdersByUser(s.db, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
