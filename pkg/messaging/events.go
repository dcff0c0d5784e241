package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Stock events
	EventStockAdjusted = "ledger.stock.adjusted"
	EventStockReserved = "ledger.stock.reserved"
	EventStockReleased = "ledger.stock.released"

	// Order events
	EventOrderCompleted = "ledger.order.completed"

	// Alert events
	EventAlertGenerated    = "ledger.alert.generated"
	EventAlertAcknowledged = "ledger.alert.acknowledged"
)

// Exchange names
const (
	ExchangeLedgerEvents = "ledger.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}

// StockAdjustedEvent is published when current stock changes
type StockAdjustedEvent struct {
	VariantID     string `json:"variant_id"`
	MovementID    string `json:"movement_id"`
	MovementType  string `json:"movement_type"`
	Quantity      int    `json:"quantity"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Reason        string `json:"reason,omitempty"`
	OrderID       string `json:"order_id,omitempty"`
}

// ReservationLine is one cart line of a reservation or release event
type ReservationLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// StockReservedEvent is published when a cart batch reserves stock
type StockReservedEvent struct {
	Lines []ReservationLine `json:"lines"`
}

// StockReleasedEvent is published when reserved stock is released
type StockReleasedEvent struct {
	Lines []ReservationLine `json:"lines"`
}

// OrderCompletedEvent is published after a purchase is recorded
type OrderCompletedEvent struct {
	OrderID string            `json:"order_id"`
	Lines   []ReservationLine `json:"lines"`
}

// AlertGeneratedEvent is published when a stock alert is created
type AlertGeneratedEvent struct {
	AlertID   string `json:"alert_id"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	VariantID string `json:"variant_id"`
}

// AlertAcknowledgedEvent is published when an alert is acknowledged
type AlertAcknowledgedEvent struct {
	AlertID        string `json:"alert_id"`
	AcknowledgedBy string `json:"acknowledged_by,omitempty"`
}
