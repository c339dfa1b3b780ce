package server

import (
	"database/sql"
	"errors"
	"fmt"

	"example/storefront/internal/auth"
	"example/storefront/internal/config"
	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/repository"

	"github.com/go-sql-driver/mysql"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS product (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DOUBLE NOT NULL,
		discount INT NOT NULL DEFAULT 0,
		category VARCHAR(100) NOT NULL DEFAULT 'Uncategorized',
		image VARCHAR(512) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at DATETIME NOT NULL
	)`,
	"CREATE TABLE IF NOT EXISTS `order` (" + `
		id CHAR(36) PRIMARY KEY,
		user_id BIGINT NOT NULL,
		total DOUBLE NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_item (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		order_id CHAR(36) NOT NULL,
		product_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		quantity INT NOT NULL,
		subtotal DOUBLE NOT NULL
	)`,
}

func mysqlConfig(cfg config.Config) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPass
	mc.Net = "tcp"
	mc.Addr = cfg.DBAddr
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	// Count matched rows, not changed rows, so an update that leaves values
	// as they were does not read as zero rows affected
	mc.ClientFoundRows = true
	return mc
}

// InitDatabase opens the MySQL connection, creates missing tables and seeds
// the default catalog and admin account.
func InitDatabase(cfg config.Config) (*sql.DB, error) {
	logger.Log.Debug("Initializing database connection")

	db, err := sql.Open("mysql", mysqlConfig(cfg).FormatDSN())
	if err != nil {
		logger.Log.Errorw("Failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		logger.Log.Errorw("Failed to ping database", "error", err)
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			logger.Log.Errorw("Failed to create schema", "error", err)
			return nil, fmt.Errorf("failed to create schema: %v", err)
		}
	}

	if err := seedAdmin(db, cfg); err != nil {
		return nil, err
	}
	if err := seedProducts(db); err != nil {
		return nil, err
	}

	logger.Log.Infow("Database connection established", "database", cfg.DBName, "host", cfg.DBAddr)
	return db, nil
}

// seedAdmin creates the admin account from configuration if it does not exist
func seedAdmin(db *sql.DB, cfg config.Config) error {
	if cfg.AdminPassword == "" {
		logger.Log.Warn("ADMIN_PASSWORD not set, skipping admin account seed")
		return nil
	}

	if _, err := repository.GetUserByEmail(db, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if _, err := repository.AddUser(db, admin); err != nil {
		return err
	}

	logger.Log.Infow("Admin account created", "email", cfg.AdminEmail)
	return nil
}

var defaultProducts = []models.Product{
	{Title: "Wireless Headphones", Description: "Over-ear Bluetooth headphones with active noise cancellation.", Price: 129.99, Discount: 10, Category: "Electronics", Image: "/images/headphones.jpg", Stock: 40},
	{Title: "Mechanical Keyboard", Description: "Tenkeyless mechanical keyboard with hot-swappable switches.", Price: 89.00, Discount: 0, Category: "Electronics", Image: "/images/keyboard.jpg", Stock: 25},
	{Title: "Ceramic Mug", Description: "350ml stoneware mug, dishwasher safe.", Price: 14.50, Discount: 0, Category: "Home", Image: "/images/mug.jpg", Stock: 120},
	{Title: "Canvas Backpack", Description: "Water-resistant 20L backpack with padded laptop sleeve.", Price: 54.90, Discount: 15, Category: "Accessories", Image: "/images/backpack.jpg", Stock: 60},
	{Title: "Desk Lamp", Description: "Dimmable LED desk lamp with USB charging port.", Price: 32.00, Discount: 5, Category: "Home", Image: "/images/lamp.jpg", Stock: 80},
}

// seedProducts fills an empty catalog with the default product set
func seedProducts(db *sql.DB) error {
	count, err := repository.CountProducts(db)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range defaultProducts {
		if _, err := repository.AddProduct(db, p); err != nil {
			return err
		}
	}

	logger.Log.Infow("Initialized catalog with default products", "count", len(defaultProducts))
	return nil
}
