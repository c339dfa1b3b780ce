package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"example/storefront/internal/repository"
)

// CatalogStock answers the realtime hub's initial stock lookups from the
// product table. Wire product ids are strings; anything that is not a catalog
// id resolves to not-found.
type CatalogStock struct {
	DB *sql.DB
}

func (c CatalogStock) ProductStock(ctx context.Context, productID string) (int, error) {
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("productStock %q: %w", productID, repository.ErrNotFound)
	}

	var stock int
	if err := c.DB.QueryRowContext(ctx, "SELECT stock FROM product WHERE id = ?", id).Scan(&stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("productStock %q: %w", productID, repository.ErrNotFound)
		}
		return 0, fmt.Errorf("productStock %q: %v", productID, err)
	}
	return stock, nil
}
