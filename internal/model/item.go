package model

import "time"

// Item represents a tracked inventory unit with a quantity.
type Item struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	Location       string    `json:"location"`
	SKU            string    `json:"sku"`
	SectionID      int64     `json:"section_id"`
	OrganizationID int64     `json:"organization_id"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AuditLog is an append-only record of an action and the signed quantity
// delta it applied to an item. Entries are never mutated or deleted and
// outlive the item they refer to.
type AuditLog struct {
	ID             int64     `json:"id"`
	ItemID         int64     `json:"item_id"`
	Action         string    `json:"action"`
	QuantityChange int       `json:"quantity_change"`
	Timestamp      time.Time `json:"timestamp"`
}

// Audit actions.
const (
	AuditActionCreate = "CREATE"
	AuditActionAdjust = "ADJUST"
	AuditActionDelete = "DELETE"
)

// StockTransaction is an append-only record of a quantity movement. The
// magnitude is always non-negative; direction is carried by Type alone.
type StockTransaction struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Stock transaction types.
const (
	TransactionTypeAdd    = "ADD"
	TransactionTypeRemove = "REMOVE"
)
