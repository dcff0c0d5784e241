package events

import (
	"context"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
	"github.com/stocklight/stocklight-backend/pkg/logger"
	"github.com/stocklight/stocklight-backend/pkg/messaging"
)

// LedgerEventPublisher publishes inventory ledger events
type LedgerEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewLedgerEventPublisher creates a new ledger event publisher
func NewLedgerEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*LedgerEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeLedgerEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &LedgerEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishStockAdjusted publishes a stock adjusted event
func (p *LedgerEventPublisher) PublishStockAdjusted(ctx context.Context, movement *ledger.StockMovement) {
	if p == nil {
		return
	}

	data := messaging.StockAdjustedEvent{
		VariantID:     movement.VariantID,
		MovementID:    movement.ID,
		MovementType:  string(movement.Type),
		Quantity:      movement.Quantity,
		PreviousStock: movement.PreviousStock,
		NewStock:      movement.NewStock,
		Reason:        movement.Reason,
		OrderID:       movement.OrderID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockAdjusted, data); err != nil {
		p.logger.Error().Err(err).Str("variant_id", movement.VariantID).Msg("failed to publish stock adjusted event")
	}
}

// PublishStockReserved publishes a stock reserved event
func (p *LedgerEventPublisher) PublishStockReserved(ctx context.Context, items []ledger.CartItem) {
	if p == nil {
		return
	}

	data := messaging.StockReservedEvent{Lines: toLines(items)}

	if err := p.publisher.Publish(ctx, messaging.EventStockReserved, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish stock reserved event")
	}
}

// PublishStockReleased publishes a stock released event
func (p *LedgerEventPublisher) PublishStockReleased(ctx context.Context, items []ledger.CartItem) {
	if p == nil {
		return
	}

	data := messaging.StockReleasedEvent{Lines: toLines(items)}

	if err := p.publisher.Publish(ctx, messaging.EventStockReleased, data); err != nil {
		p.logger.Error().Err(err).Msg("failed to publish stock released event")
	}
}

// PublishOrderCompleted publishes an order completed event
func (p *LedgerEventPublisher) PublishOrderCompleted(ctx context.Context, orderID string, items []ledger.CartItem) {
	if p == nil {
		return
	}

	data := messaging.OrderCompletedEvent{
		OrderID: orderID,
		Lines:   toLines(items),
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to publish order completed event")
	}
}

// PublishAlertGenerated publishes an alert generated event
func (p *LedgerEventPublisher) PublishAlertGenerated(ctx context.Context, alert *ledger.InventoryAlert) {
	if p == nil {
		return
	}

	data := messaging.AlertGeneratedEvent{
		AlertID:   alert.ID,
		AlertType: string(alert.Type),
		Severity:  string(alert.Severity),
		Message:   alert.Message,
		VariantID: alert.VariantID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish alert generated event")
	}
}

// PublishAlertAcknowledged publishes an alert acknowledged event
func (p *LedgerEventPublisher) PublishAlertAcknowledged(ctx context.Context, alert *ledger.InventoryAlert) {
	if p == nil {
		return
	}

	data := messaging.AlertAcknowledgedEvent{AlertID: alert.ID}

	if err := p.publisher.Publish(ctx, messaging.EventAlertAcknowledged, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("failed to publish alert acknowledged event")
	}
}

func toLines(items []ledger.CartItem) []messaging.ReservationLine {
	lines := make([]messaging.ReservationLine, len(items))
	for i, item := range items {
		lines[i] = messaging.ReservationLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}
	return lines
}
