package messaging_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklight/stocklight-backend/pkg/messaging"
)

func TestNewEvent(t *testing.T) {
	data := messaging.StockAdjustedEvent{
		VariantID:     "var-1",
		MovementID:    "mov-1",
		MovementType:  "restock",
		Quantity:      5,
		PreviousStock: 10,
		NewStock:      15,
		Reason:        "supplier delivery",
	}

	event, err := messaging.NewEvent(messaging.EventStockAdjusted, "inventory-service", "corr-1", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "ledger.stock.adjusted", event.Type)
	assert.Equal(t, "inventory-service", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())

	var payload messaging.StockAdjustedEvent
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, data, payload)
}

func TestEventEnvelopeRoundTrip(t *testing.T) {
	event, err := messaging.NewEvent(messaging.EventOrderCompleted, "inventory-service", "", messaging.OrderCompletedEvent{
		OrderID: "ord-1",
		Lines: []messaging.ReservationLine{
			{VariantID: "var-1", Quantity: 2},
		},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded messaging.Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Type, decoded.Type)

	var payload messaging.OrderCompletedEvent
	require.NoError(t, json.Unmarshal(decoded.Data, &payload))
	assert.Equal(t, "ord-1", payload.OrderID)
	require.Len(t, payload.Lines, 1)
	assert.Equal(t, 2, payload.Lines[0].Quantity)
}

func TestEventTypeNames(t *testing.T) {
	// routing keys are part of the wire contract with consumers
	assert.Equal(t, "ledger.stock.reserved", messaging.EventStockReserved)
	assert.Equal(t, "ledger.stock.released", messaging.EventStockReleased)
	assert.Equal(t, "ledger.alert.generated", messaging.EventAlertGenerated)
	assert.Equal(t, "ledger.alert.acknowledged", messaging.EventAlertAcknowledged)
	assert.Equal(t, "ledger.events", messaging.ExchangeLedgerEvents)
}
