package models

import "time"

// Product represents a catalog product
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Discount    int       `json:"discount"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User represents a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Order represents a simulated checkout: stock is decremented, no payment is taken
type Order struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"userId"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderItem represents one product line within an order
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}
