package realtime

import "sync"

// StockOverlay tracks the advisory "available stock" value reported per
// product. Values are transient and last-write-wins by arrival order; they
// hint at availability in the UI and never gate real inventory.
type StockOverlay struct {
	mu    sync.RWMutex
	stock map[string]int
}

// NewStockOverlay creates an empty overlay
func NewStockOverlay() *StockOverlay {
	return &StockOverlay{stock: make(map[string]int)}
}

// Set stores the most recently reported value for productID
func (o *StockOverlay) Set(productID string, stock int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stock[productID] = stock
}

// Seed stores stock for productID only if no value has been reported yet,
// so a catalog lookup that completes late never clobbers a fresher client
// report. It returns the value now held for the product.
func (o *StockOverlay) Seed(productID string, stock int) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if current, ok := o.stock[productID]; ok {
		return current
	}
	o.stock[productID] = stock
	return stock
}

// Get returns the current overlay value for productID, if any was ever
// reported or seeded in this server's lifetime.
func (o *StockOverlay) Get(productID string) (int, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	stock, ok := o.stock[productID]
	return stock, ok
}
