package ledger

import "time"

// MovementType classifies a stock movement
type MovementType string

const (
	MovementSale        MovementType = "sale"
	MovementRestock     MovementType = "restock"
	MovementAdjustment  MovementType = "adjustment"
	MovementReservation MovementType = "reservation"
	MovementRelease     MovementType = "release"
)

// AlertType classifies a stock alert
type AlertType string

const (
	AlertLowStock   AlertType = "low_stock"
	AlertOutOfStock AlertType = "out_of_stock"
	// AlertRestockNeeded is part of the snapshot vocabulary but is not
	// generated by the evaluation chain.
	AlertRestockNeeded AlertType = "restock_needed"
)

// AlertSeverity grades a stock alert
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// InventoryItem tracks stock for one product variant.
//
// Invariants: AvailableStock == CurrentStock - ReservedStock, all three
// values are never negative, and ReservedStock never exceeds CurrentStock.
type InventoryItem struct {
	VariantID         string    `json:"variant_id"`
	ProductID         string    `json:"product_id"`
	SKU               string    `json:"sku"`
	CurrentStock      int       `json:"current_stock"`
	ReservedStock     int       `json:"reserved_stock"`
	AvailableStock    int       `json:"available_stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	LastUpdated       time.Time `json:"last_updated"`
}

// StockMovement is an append-only audit record of a stock or reservation
// change. Reservation and release movements record PreviousStock == NewStock
// since they only move the reserved counter.
type StockMovement struct {
	ID            string       `json:"id"`
	VariantID     string       `json:"variant_id"`
	Type          MovementType `json:"type"`
	Quantity      int          `json:"quantity"`
	PreviousStock int          `json:"previous_stock"`
	NewStock      int          `json:"new_stock"`
	Reason        string       `json:"reason,omitempty"`
	OrderID       string       `json:"order_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// InventoryAlert is a derived signal that a variant crossed a stock
// threshold. At most one unacknowledged alert of a given type exists per
// variant; acknowledging keeps the record.
type InventoryAlert struct {
	ID             string        `json:"id"`
	VariantID      string        `json:"variant_id"`
	Type           AlertType     `json:"type"`
	Message        string        `json:"message"`
	Severity       AlertSeverity `json:"severity"`
	Acknowledged   bool          `json:"acknowledged"`
	CreatedAt      time.Time     `json:"created_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
}

// ProductVariant is one purchasable configuration supplied by the catalog
type ProductVariant struct {
	ID    string `json:"id"`
	SKU   string `json:"sku,omitempty"`
	Stock int    `json:"stock"`
}

// Product is the catalog initialization input shape
type Product struct {
	ID       string           `json:"id"`
	Variants []ProductVariant `json:"variants"`
}

// CartItem is one line of a reservation, release, or purchase batch
type CartItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// StockUpdateType selects the direction of a manual stock update
type StockUpdateType string

const (
	StockIncrease StockUpdateType = "increase"
	StockDecrease StockUpdateType = "decrease"
)

// UpdateStockRequest describes a manual stock adjustment
type UpdateStockRequest struct {
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Type      StockUpdateType `json:"type"`
	Reason    string          `json:"reason,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
}

// Stats aggregates the ledger for the admin dashboard
type Stats struct {
	TotalProducts      int `json:"total_products"`
	TotalVariants      int `json:"total_variants"`
	TotalCurrentStock  int `json:"total_current_stock"`
	TotalReservedStock int `json:"total_reserved_stock"`
	LowStockCount      int `json:"low_stock_count"`
	OutOfStockCount    int `json:"out_of_stock_count"`
}

// lowStockThreshold derives the alerting threshold from the initial stock
// level: 20% of the initial count, clamped to [2, 10].
func lowStockThreshold(initialStock int) int {
	threshold := initialStock / 5
	if threshold < 2 {
		threshold = 2
	}
	if threshold > 10 {
		threshold = 10
	}
	return threshold
}
