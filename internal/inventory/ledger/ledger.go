// Package ledger implements the inventory ledger: the authoritative map of
// stock per product variant, the append-only movement log, and the derived
// alert set. All mutations go through the Ledger, which persists its full
// state to a snapshot store before returning.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stocklight/stocklight-backend/internal/inventory/store"
	"github.com/stocklight/stocklight-backend/pkg/errors"
	"github.com/stocklight/stocklight-backend/pkg/logger"
)

// SnapshotKey is the fixed storage key the ledger state lives under
const SnapshotKey = "inventory_ledger"

// EventPublisher receives domain events after successful mutations.
// Implementations must tolerate being called from inside the ledger lock;
// publish failures are the publisher's concern and never fail the mutation.
type EventPublisher interface {
	PublishStockAdjusted(ctx context.Context, movement *StockMovement)
	PublishStockReserved(ctx context.Context, items []CartItem)
	PublishStockReleased(ctx context.Context, items []CartItem)
	PublishOrderCompleted(ctx context.Context, orderID string, items []CartItem)
	PublishAlertGenerated(ctx context.Context, alert *InventoryAlert)
	PublishAlertAcknowledged(ctx context.Context, alert *InventoryAlert)
}

// Ledger owns all inventory state. A single mutex guards every operation,
// so the validate-then-apply reservation batch can never interleave with
// another mutation.
type Ledger struct {
	mu        sync.Mutex
	items     map[string]*InventoryItem
	movements []*StockMovement
	alerts    []*InventoryAlert

	store     store.Store
	key       string
	publisher EventPublisher
	logger    *logger.Logger
}

// NewLedger creates a ledger backed by the given snapshot store. The
// publisher may be nil when no broker is configured. Call Load before
// serving traffic.
func NewLedger(st store.Store, key string, publisher EventPublisher, log *logger.Logger) *Ledger {
	if key == "" {
		key = SnapshotKey
	}
	return &Ledger{
		items:     make(map[string]*InventoryItem),
		store:     st,
		key:       key,
		publisher: publisher,
		logger:    log.WithComponent("ledger"),
	}
}

// Load rehydrates the ledger from the snapshot store. A missing snapshot
// starts the ledger empty. A corrupt or unsupported snapshot is logged and
// also starts empty, so a bad snapshot never takes the service down. Only
// store I/O errors are returned; the caller decides whether to continue.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.store.Load(ctx, l.key)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		l.logger.Info().Str("key", l.key).Msg("no snapshot found, starting empty")
		return nil
	}
	if err != nil {
		l.logger.Error().Err(err).Str("key", l.key).Msg("failed to load snapshot")
		return errors.PersistenceFailure(err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		l.logger.Error().Err(err).Str("key", l.key).Msg("failed to decode snapshot, starting empty")
		return nil
	}

	l.items = make(map[string]*InventoryItem, len(snap.Items))
	for i := range snap.Items {
		item := snap.Items[i]
		l.items[item.VariantID] = &item
	}
	l.movements = make([]*StockMovement, 0, len(snap.Movements))
	for i := range snap.Movements {
		l.movements = append(l.movements, &snap.Movements[i])
	}
	l.alerts = make([]*InventoryAlert, 0, len(snap.Alerts))
	for i := range snap.Alerts {
		l.alerts = append(l.alerts, &snap.Alerts[i])
	}

	l.logger.Info().
		Int("items", len(l.items)).
		Int("movements", len(l.movements)).
		Int("alerts", len(l.alerts)).
		Msg("ledger loaded from snapshot")

	return nil
}

// InitializeInventory creates inventory items for every variant in the
// catalog input. Variants already tracked are reset to the supplied stock;
// tracked variants absent from the input are left untouched.
func (l *Ledger) InitializeInventory(ctx context.Context, products []Product) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	for _, product := range products {
		for _, variant := range product.Variants {
			item := &InventoryItem{
				VariantID:         variant.ID,
				ProductID:         product.ID,
				SKU:               variant.SKU,
				CurrentStock:      variant.Stock,
				ReservedStock:     0,
				AvailableStock:    variant.Stock,
				LowStockThreshold: lowStockThreshold(variant.Stock),
				LastUpdated:       now,
			}
			l.items[variant.ID] = item
			l.checkStockAlerts(ctx, item)
		}
	}

	l.logger.Info().Int("products", len(products)).Msg("inventory initialized")

	return l.persist(ctx)
}

// Item returns a snapshot of one inventory item
func (l *Ledger) Item(variantID string) (InventoryItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[variantID]
	if !ok {
		return InventoryItem{}, errors.NotFound("inventory item")
	}
	return *item, nil
}

// Items returns a snapshot of all inventory items
func (l *Ledger) Items() []InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]InventoryItem, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, *item)
	}
	return out
}

// Stats aggregates the ledger state for the dashboard
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{TotalVariants: len(l.items)}
	products := make(map[string]struct{})

	for _, item := range l.items {
		products[item.ProductID] = struct{}{}
		stats.TotalCurrentStock += item.CurrentStock
		stats.TotalReservedStock += item.ReservedStock

		switch {
		case item.CurrentStock == 0:
			stats.OutOfStockCount++
		case item.CurrentStock <= item.LowStockThreshold:
			stats.LowStockCount++
		}
	}

	stats.TotalProducts = len(products)
	return stats
}

// Movements returns the audit log newest-first, optionally filtered by
// variant. Pass an empty variantID for the full log.
func (l *Ledger) Movements(variantID string) []StockMovement {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]StockMovement, 0, len(l.movements))
	for i := len(l.movements) - 1; i >= 0; i-- {
		m := l.movements[i]
		if variantID != "" && m.VariantID != variantID {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// ActiveAlerts returns all unacknowledged alerts
func (l *Ledger) ActiveAlerts() []InventoryAlert {
	acknowledged := false
	return l.Alerts(&acknowledged, "")
}

// Alerts returns alerts filtered by acknowledgement state and type.
// Nil / empty filters match everything.
func (l *Ledger) Alerts(acknowledged *bool, alertType AlertType) []InventoryAlert {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]InventoryAlert, 0, len(l.alerts))
	for _, alert := range l.alerts {
		if acknowledged != nil && alert.Acknowledged != *acknowledged {
			continue
		}
		if alertType != "" && alert.Type != alertType {
			continue
		}
		out = append(out, *alert)
	}
	return out
}

// UpdateStock applies a manual stock adjustment. Decreases clamp at zero
// rather than erroring on over-decrease.
func (l *Ledger) UpdateStock(ctx context.Context, req UpdateStockRequest) error {
	if req.Quantity <= 0 {
		return errors.BadRequest("quantity must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item, ok := l.items[req.VariantID]
	if !ok {
		l.logger.WithVariant(req.VariantID).Error().Msg("stock update for unknown variant")
		return errors.NotFound("inventory item")
	}

	previous := item.CurrentStock
	var movementType MovementType

	switch req.Type {
	case StockIncrease:
		item.CurrentStock += req.Quantity
		movementType = MovementRestock
	case StockDecrease:
		item.CurrentStock -= req.Quantity
		if item.CurrentStock < 0 {
			item.CurrentStock = 0
		}
		movementType = MovementSale
	default:
		return errors.BadRequest(fmt.Sprintf("unknown stock update type %q", req.Type))
	}

	// A clamped decrease can leave more reserved than exists; clamp the
	// hold so reserved never exceeds current stock.
	if item.ReservedStock > item.CurrentStock {
		item.ReservedStock = item.CurrentStock
	}
	item.AvailableStock = item.CurrentStock - item.ReservedStock
	item.LastUpdated = time.Now().UTC()

	movement := l.appendMovement(item.VariantID, movementType, req.Quantity, previous, item.CurrentStock, req.Reason, req.OrderID)
	l.checkStockAlerts(ctx, item)

	if err := l.persist(ctx); err != nil {
		return err
	}

	if l.publisher != nil {
		l.publisher.PublishStockAdjusted(ctx, movement)
	}

	return nil
}

// ReserveStock places a hold on every cart line, or none of them. The batch
// is validated in full against available stock before any line is applied.
func (l *Ledger) ReserveStock(ctx context.Context, items []CartItem) error {
	if err := validateCartLines(items); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Phase one: validate the batch. Quantities are aggregated per variant
	// first so duplicate lines cannot each pass against the same available
	// stock. Any shortfall rejects the whole batch with nothing mutated.
	requested := make(map[string]int)
	for _, line := range items {
		requested[line.VariantID] += line.Quantity
	}

	shortfalls := make(map[string]string)
	for variantID, quantity := range requested {
		item, ok := l.items[variantID]
		if !ok {
			shortfalls[variantID] = "unknown variant"
			continue
		}
		if item.AvailableStock < quantity {
			shortfalls[variantID] = fmt.Sprintf("requested %d, available %d", quantity, item.AvailableStock)
		}
	}
	if len(shortfalls) > 0 {
		l.logger.Warn().Interface("lines", shortfalls).Msg("reservation rejected")
		return errors.InsufficientStock(shortfalls)
	}

	// Phase two: apply all lines. Reservations move the reserved counter
	// only, so movements record previous == new current stock.
	now := time.Now().UTC()
	for _, line := range items {
		item := l.items[line.VariantID]
		item.ReservedStock += line.Quantity
		item.AvailableStock = item.CurrentStock - item.ReservedStock
		item.LastUpdated = now

		l.appendMovement(item.VariantID, MovementReservation, line.Quantity, item.CurrentStock, item.CurrentStock, "", "")
	}

	if err := l.persist(ctx); err != nil {
		return err
	}

	if l.publisher != nil {
		l.publisher.PublishStockReserved(ctx, items)
	}

	return nil
}

// ReleaseReservedStock releases cart holds. Lines asking for more than is
// reserved are skipped with a consistency warning rather than failing the
// batch.
func (l *Ledger) ReleaseReservedStock(ctx context.Context, items []CartItem) error {
	if err := validateCartLines(items); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	released := make([]CartItem, 0, len(items))

	for _, line := range items {
		item, ok := l.items[line.VariantID]
		if !ok {
			l.logger.WithVariant(line.VariantID).Error().Msg("release for unknown variant")
			continue
		}
		if item.ReservedStock < line.Quantity {
			l.logger.Warn().
				Str("variant_id", line.VariantID).
				Int("requested", line.Quantity).
				Int("reserved", item.ReservedStock).
				Msg("release exceeds reserved stock, skipping line")
			continue
		}

		item.ReservedStock -= line.Quantity
		item.AvailableStock = item.CurrentStock - item.ReservedStock
		item.LastUpdated = now

		l.appendMovement(item.VariantID, MovementRelease, line.Quantity, item.CurrentStock, item.CurrentStock, "", "")
		released = append(released, line)
	}

	if len(released) == 0 {
		return nil
	}

	if err := l.persist(ctx); err != nil {
		return err
	}

	if l.publisher != nil {
		l.publisher.PublishStockReleased(ctx, released)
	}

	return nil
}

// ProcessPurchase records a completed order by decrementing current stock
// for every line, clamped at zero.
//
// Reserved stock is intentionally not touched here: a reservation placed for
// the same cart must be released separately, or it lingers as an orphaned
// hold. See the test suite for the observable consequence.
func (l *Ledger) ProcessPurchase(ctx context.Context, items []CartItem, orderID string) error {
	if err := validateCartLines(items); err != nil {
		return err
	}
	if orderID == "" {
		return errors.BadRequest("order ID is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	sold := make([]CartItem, 0, len(items))

	for _, line := range items {
		item, ok := l.items[line.VariantID]
		if !ok {
			l.logger.Error().
				Str("variant_id", line.VariantID).
				Str("order_id", orderID).
				Msg("purchase for unknown variant")
			continue
		}

		previous := item.CurrentStock
		item.CurrentStock -= line.Quantity
		if item.CurrentStock < 0 {
			item.CurrentStock = 0
		}
		if item.ReservedStock > item.CurrentStock {
			item.ReservedStock = item.CurrentStock
		}
		item.AvailableStock = item.CurrentStock - item.ReservedStock
		item.LastUpdated = now

		movement := l.appendMovement(item.VariantID, MovementSale, line.Quantity, previous, item.CurrentStock, "", orderID)
		l.checkStockAlerts(ctx, item)
		sold = append(sold, line)

		if l.publisher != nil {
			l.publisher.PublishStockAdjusted(ctx, movement)
		}
	}

	if len(sold) == 0 {
		return errors.NotFound("inventory item")
	}

	if err := l.persist(ctx); err != nil {
		return err
	}

	if l.publisher != nil {
		l.publisher.PublishOrderCompleted(ctx, orderID, sold)
	}

	return nil
}

// AcknowledgeAlert marks an alert acknowledged. The record is kept; it only
// leaves the active set.
func (l *Ledger) AcknowledgeAlert(ctx context.Context, alertID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, alert := range l.alerts {
		if alert.ID != alertID {
			continue
		}
		if alert.Acknowledged {
			return nil
		}

		now := time.Now().UTC()
		alert.Acknowledged = true
		alert.AcknowledgedAt = &now

		if err := l.persist(ctx); err != nil {
			return err
		}

		if l.publisher != nil {
			l.publisher.PublishAlertAcknowledged(ctx, alert)
		}
		return nil
	}

	return errors.NotFound("alert")
}

// appendMovement records one audit entry. Callers hold the lock.
func (l *Ledger) appendMovement(variantID string, movementType MovementType, quantity, previousStock, newStock int, reason, orderID string) *StockMovement {
	movement := &StockMovement{
		ID:            uuid.New().String(),
		VariantID:     variantID,
		Type:          movementType,
		Quantity:      quantity,
		PreviousStock: previousStock,
		NewStock:      newStock,
		Reason:        reason,
		OrderID:       orderID,
		Timestamp:     time.Now().UTC(),
	}
	l.movements = append(l.movements, movement)
	return movement
}

// checkStockAlerts evaluates the alert conditions for one item. The chain is
// mutually exclusive: out-of-stock wins over low-stock. Alerts deduplicate
// per (variant, type) against the unacknowledged set, and recovery never
// auto-resolves an existing alert. Callers hold the lock.
func (l *Ledger) checkStockAlerts(ctx context.Context, item *InventoryItem) {
	var (
		alertType AlertType
		severity  AlertSeverity
		message   string
	)

	switch {
	case item.CurrentStock == 0:
		alertType = AlertOutOfStock
		severity = SeverityCritical
		message = fmt.Sprintf("%s is out of stock", item.SKU)
	case item.CurrentStock <= item.LowStockThreshold:
		alertType = AlertLowStock
		severity = SeverityMedium
		message = fmt.Sprintf("%s is low on stock (%d/%d)", item.SKU, item.CurrentStock, item.LowStockThreshold)
	default:
		return
	}

	if l.hasActiveAlert(item.VariantID, alertType) {
		return
	}

	alert := &InventoryAlert{
		ID:        uuid.New().String(),
		VariantID: item.VariantID,
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	l.alerts = append(l.alerts, alert)

	l.logger.Warn().
		Str("variant_id", item.VariantID).
		Str("alert_type", string(alertType)).
		Str("severity", string(severity)).
		Msg("stock alert generated")

	if l.publisher != nil {
		l.publisher.PublishAlertGenerated(ctx, alert)
	}
}

func (l *Ledger) hasActiveAlert(variantID string, alertType AlertType) bool {
	for _, alert := range l.alerts {
		if alert.VariantID == variantID && alert.Type == alertType && !alert.Acknowledged {
			return true
		}
	}
	return false
}

// persist serializes the full ledger state and saves it. The in-memory
// mutation has already applied when this runs; a failed save leaves memory
// and storage diverged, which is logged and surfaced to the caller.
// Callers hold the lock.
func (l *Ledger) persist(ctx context.Context) error {
	data, err := l.encodeSnapshot()
	if err != nil {
		l.logger.WithError(err).Error().Msg("failed to encode snapshot")
		return errors.PersistenceFailure(err)
	}

	if err := l.store.Save(ctx, l.key, data); err != nil {
		l.logger.WithError(err).Error().Str("key", l.key).Msg("failed to save snapshot")
		return errors.PersistenceFailure(err)
	}

	return nil
}

func validateCartLines(items []CartItem) error {
	if len(items) == 0 {
		return errors.BadRequest("cart is empty")
	}
	for _, line := range items {
		if line.VariantID == "" {
			return errors.BadRequest("cart line missing variant ID")
		}
		if line.Quantity <= 0 {
			return errors.BadRequest("cart line quantity must be positive")
		}
	}
	return nil
}
