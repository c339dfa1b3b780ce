package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
)

// Product database operations

const productColumns = "id, title, description, price, discount, category, image, stock, created_at, updated_at"

func scanProduct(row interface{ Scan(dest ...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Discount,
		&p.Category, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetAllProducts queries for all products, newest first
func GetAllProducts(db *sql.DB) ([]models.Product, error) {
	var products []models.Product

	rows, err := db.Query("SELECT " + productColumns + " FROM product ORDER BY created_at DESC, id DESC")
	if err != nil {
		logger.Log.Errorw("Failed to query products", "error", err)
		return nil, fmt.Errorf("getAllProducts: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Log.Errorw("Failed to scan product", "error", err)
			return nil, fmt.Errorf("getAllProducts: %v", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		logger.Log.Errorw("Error iterating products", "error", err)
		return nil, fmt.Errorf("getAllProducts: %v", err)
	}

	return products, nil
}

// GetProductByID queries for the product with the specified ID
func GetProductByID(db *sql.DB, id int64) (models.Product, error) {
	row := db.QueryRow("SELECT "+productColumns+" FROM product WHERE id = ?", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, fmt.Errorf("getProductByID %d: %w", id, ErrNotFound)
		}
		logger.Log.Errorw("Failed to query product", "product_id", id, "error", err)
		return p, fmt.Errorf("getProductByID %d: %v", id, err)
	}
	return p, nil
}

// AddProduct adds the specified product to the catalog,
// returning the product ID of the new entry
func AddProduct(db *sql.DB, p models.Product) (int64, error) {
	logger.Log.Infow("Adding new product", "title", p.Title, "price", p.Price, "stock", p.Stock)

	now := time.Now().UTC().Truncate(time.Second)
	result, err := db.Exec(
		"INSERT INTO product (title, description, price, discount, category, image, stock, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.Title, p.Description, p.Price, p.Discount, p.Category, p.Image, p.Stock, now, now)
	if err != nil {
		logger.Log.Errorw("Failed to insert product", "error", err, "title", p.Title)
		return 0, fmt.Errorf("addProduct: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		logger.Log.Errorw("Failed to get product ID", "error", err)
		return 0, fmt.Errorf("addProduct: %v", err)
	}

	logger.Log.Infow("Product created", "product_id", id, "title", p.Title)
	return id, nil
}

// UpdateProduct overwrites the stored product with the given one
func UpdateProduct(db *sql.DB, p models.Product) error {
	now := time.Now().UTC().Truncate(time.Second)
	result, err := db.Exec(
		"UPDATE product SET title = ?, description = ?, price = ?, discount = ?, category = ?, image = ?, stock = ?, updated_at = ? WHERE id = ?",
		p.Title, p.Description, p.Price, p.Discount, p.Category, p.Image, p.Stock, now, p.ID)
	if err != nil {
		logger.Log.Errorw("Failed to update product", "product_id", p.ID, "error", err)
		return fmt.Errorf("updateProduct %d: %v", p.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updateProduct %d: %v", p.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("updateProduct %d: %w", p.ID, ErrNotFound)
	}

	logger.Log.Infow("Product updated", "product_id", p.ID, "title", p.Title)
	return nil
}

// DeleteProduct removes the product with the specified ID
func DeleteProduct(db *sql.DB, id int64) error {
	result, err := db.Exec("DELETE FROM product WHERE id = ?", id)
	if err != nil {
		logger.Log.Errorw("Failed to delete product", "product_id", id, "error", err)
		return fmt.Errorf("deleteProduct %d: %v", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleteProduct %d: %v", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("deleteProduct %d: %w", id, ErrNotFound)
	}

	logger.Log.Infow("Product deleted", "product_id", id)
	return nil
}

// CountProducts returns the number of catalog entries
func CountProducts(db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM product").Scan(&count); err != nil {
		return 0, fmt.Errorf("countProducts: %v", err)
	}
	return count, nil
}
