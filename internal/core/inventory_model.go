package core

import (
	"context"
	"time"
)

// StockStatus is derived from on-hand stock against the minimum level.
type StockStatus string

const (
	StockInStock    StockStatus = "In Stock"
	StockLow        StockStatus = "Low Stock"
	StockOutOfStock StockStatus = "Out of Stock"
)

// Movement types recorded in inventory_movements.
const (
	MovementAddition = "ADDITION"
	MovementRemoval  = "REMOVAL"
)

// InventoryKey identifies a stocked spare.
type InventoryKey struct {
	PartNumber string `json:"part_number"`
	ToolNumber string `json:"tool_number"`
	Name       string `json:"name"`
}

// InventoryItem is a stocked spare. Quantity is the cumulative received count,
// StockLevel is what is on hand now. Status is never stored.
type InventoryItem struct {
	ID int `json:"id"`
	InventoryKey
	Quantity        int                 `json:"quantity"`
	StockLevel      int                 `json:"stock_level"`
	MinStockLevel   int                 `json:"min_stock_level"`
	AdditionHistory []InventoryMovement `json:"addition_history,omitempty"`
	RemovalHistory  []InventoryMovement `json:"removal_history,omitempty"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// DerivedStatus computes the stock status from the current level.
func (it InventoryItem) DerivedStatus() StockStatus {
	return DeriveStockStatus(it.StockLevel, it.MinStockLevel)
}

// InventoryMovement is one append-only history entry.
type InventoryMovement struct {
	ID           int       `json:"id"`
	MovementType string    `json:"movement_type"`
	Quantity     int       `json:"quantity"`
	Reference    string    `json:"reference"`
	Actor        string    `json:"actor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockView is the read shape of an inventory item, status included.
type StockView struct {
	InventoryItem
	Status StockStatus `json:"status"`
}

// InventoryService exposes the spares ledger.
type InventoryService interface {
	// GetStock returns every inventory item with derived status and history.
	GetStock(ctx context.Context) ([]StockView, error)

	// GetItem returns the inventory item for the key.
	GetItem(ctx context.Context, key InventoryKey) (*StockView, error)
}
