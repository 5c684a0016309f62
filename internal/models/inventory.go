package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a per-tenant stock row. Quantity is mutated only through
// the ledger's conditional decrement and audited adjust; it never goes
// negative. Low stock is derived from reorder_threshold, never stored.
type InventoryItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TenantID         uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name             string    `json:"name" db:"name"`
	SKU              string    `json:"sku" db:"sku"`
	Quantity         int       `json:"quantity" db:"quantity"`
	ReorderThreshold int       `json:"reorder_threshold" db:"reorder_threshold"`
	Unit             string    `json:"unit" db:"unit"`
	LastUpdated      time.Time `json:"last_updated" db:"last_updated"`
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.ReorderThreshold
}
