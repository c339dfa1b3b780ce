package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"

	"github.com/google/uuid"
)

// Order database operations. Checkout is simulated: stock is decremented
// transactionally but no payment is taken.

// CartItem is one requested product line at checkout
type CartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrder checks and decrements stock for every requested item and
// records the order inside a single transaction. Any failure rolls the whole
// order back.
func CreateOrder(db *sql.DB, userID int64, items []CartItem) (models.Order, error) {
	order := models.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	logger.Log.Debugw("Starting checkout transaction", "user_id", userID, "order_id", order.ID, "items", len(items))

	tx, err := db.Begin()
	if err != nil {
		logger.Log.Errorw("Failed to begin transaction", "error", err, "user_id", userID)
		return order, fmt.Errorf("createOrder begin tx: %v", err)
	}
	defer func() {
		if err != nil {
			logger.Log.Warnw("Rolling back checkout", "user_id", userID, "order_id", order.ID, "error", err)
			tx.Rollback()
		}
	}()

	for _, item := range items {
		var (
			title    string
			price    float64
			discount int
			stock    int
		)
		row := tx.QueryRow("SELECT title, price, discount, stock FROM product WHERE id = ?", item.ProductID)
		if err = row.Scan(&title, &price, &discount, &stock); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = fmt.Errorf("createOrder: product %d: %w", item.ProductID, ErrNotFound)
				return order, err
			}
			err = fmt.Errorf("createOrder: product lookup %d: %v", item.ProductID, err)
			return order, err
		}

		if stock < item.Quantity {
			logger.Log.Warnw("Insufficient stock at checkout",
				"product_id", item.ProductID, "available_stock", stock, "requested_quantity", item.Quantity)
			err = fmt.Errorf("createOrder: product %d (have=%d, want=%d): %w",
				item.ProductID, stock, item.Quantity, ErrInsufficientStock)
			return order, err
		}

		if err = decrementStock(tx, item.ProductID, item.Quantity); err != nil {
			return order, err
		}

		unitPrice := price * (1 - float64(discount)/100)
		line := models.OrderItem{
			ProductID: item.ProductID,
			Title:     title,
			Price:     unitPrice,
			Quantity:  item.Quantity,
			Subtotal:  unitPrice * float64(item.Quantity),
		}
		order.Items = append(order.Items, line)
		order.Total += line.Subtotal
	}

	if _, err = tx.Exec(
		"INSERT INTO `order` (id, user_id, total, created_at) VALUES (?, ?, ?, ?)",
		order.ID, order.UserID, order.Total, order.CreatedAt); err != nil {
		err = fmt.Errorf("createOrder: insert order: %v", err)
		return order, err
	}

	for _, line := range order.Items {
		if _, err = tx.Exec(
			"INSERT INTO order_item (order_id, product_id, title, price, quantity, subtotal) VALUES (?, ?, ?, ?, ?, ?)",
			order.ID, line.ProductID, line.Title, line.Price, line.Quantity, line.Subtotal); err != nil {
			err = fmt.Errorf("createOrder: insert order item: %v", err)
			return order, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("createOrder: commit: %v", err)
		return order, err
	}

	logger.Log.Infow("Order committed", "order_id", order.ID, "user_id", userID, "total", order.Total)
	return order, nil
}

// decrementStock applies the guarded stock decrement for one order line. The
// earlier read is only advisory: a concurrent checkout may have drained the
// stock since, in which case the guard matches no row and the line fails with
// ErrInsufficientStock.
func decrementStock(tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.Exec(
		"UPDATE product SET stock = stock - ? WHERE id = ? AND stock >= ?",
		quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrementStock %d: %v", productID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrementStock %d: %v", productID, err)
	}
	if affected == 0 {
		logger.Log.Warnw("Stock drained by a concurrent checkout",
			"product_id", productID, "requested_quantity", quantity)
		return fmt.Errorf("decrementStock %d (want=%d): %w", productID, quantity, ErrInsufficientStock)
	}
	return nil
}

// GetOrdersByUser queries for a user's orders, newest first, with their items
func GetOrdersByUser(db *sql.DB, userID int64) ([]models.Order, error) {
	rows, err := db.Query(
		"SELECT id, user_id, total, created_at FROM `order` WHERE user_id = ? ORDER BY created_at DESC, id", userID)
	if err != nil {
		logger.Log.Errorw("Failed to query orders", "user_id", userID, "error", err)
		return nil, fmt.Errorf("getOrdersByUser %d: %v", userID, err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.CreatedAt); err != nil {
			logger.Log.Errorw("Failed to scan order", "user_id", userID, "error", err)
			return nil, fmt.Errorf("getOrdersByUser %d: %v", userID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		logger.Log.Errorw("Error iterating orders", "user_id", userID, "error", err)
		return nil, fmt.Errorf("getOrdersByUser %d: %v", userID, err)
	}
	rows.Close()

	for i := range orders {
		items, err := getOrderItems(db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func getOrderItems(db *sql.DB, orderID string) ([]models.OrderItem, error) {
	rows, err := db.Query(
		"SELECT product_id, title, price, quantity, subtotal FROM order_item WHERE order_id = ? ORDER BY product_id", orderID)
	if err != nil {
		return nil, fmt.Errorf("getOrderItems %s: %v", orderID, err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Price, &it.Quantity, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("getOrderItems %s: %v", orderID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getOrderItems %s: %v", orderID, err)
	}
	return items, nil
}
