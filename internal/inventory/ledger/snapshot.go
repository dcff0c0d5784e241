package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible release.
const snapshotVersion = 1

// Caps applied when serializing. The in-memory log is never trimmed during
// a session; only the persisted snapshot is bounded.
const (
	maxPersistedMovements = 1000
	maxPersistedAlerts    = 100
)

type snapshot struct {
	Version   int              `json:"version"`
	SavedAt   time.Time        `json:"saved_at"`
	Items     []InventoryItem  `json:"items"`
	Movements []StockMovement  `json:"movements"`
	Alerts    []InventoryAlert `json:"alerts"`
}

// encodeSnapshot serializes the full ledger state, trimming the movement
// and alert logs to their persisted caps. Callers hold the lock.
func (l *Ledger) encodeSnapshot() ([]byte, error) {
	snap := snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
	}

	snap.Items = make([]InventoryItem, 0, len(l.items))
	for _, item := range l.items {
		snap.Items = append(snap.Items, *item)
	}
	// Deterministic order keeps snapshots diffable
	sort.Slice(snap.Items, func(i, j int) bool {
		return snap.Items[i].VariantID < snap.Items[j].VariantID
	})

	movements := l.movements
	if len(movements) > maxPersistedMovements {
		movements = movements[len(movements)-maxPersistedMovements:]
	}
	snap.Movements = make([]StockMovement, 0, len(movements))
	for _, m := range movements {
		snap.Movements = append(snap.Movements, *m)
	}

	alerts := l.alerts
	if len(alerts) > maxPersistedAlerts {
		alerts = alerts[len(alerts)-maxPersistedAlerts:]
	}
	snap.Alerts = make([]InventoryAlert, 0, len(alerts))
	for _, a := range alerts {
		snap.Alerts = append(snap.Alerts, *a)
	}

	return json.Marshal(snap)
}

// decodeSnapshot parses snapshot bytes, rejecting unsupported versions.
// Timestamps round-trip through their RFC 3339 string form.
func decodeSnapshot(data []byte) (*snapshot, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt snapshot: %w", err)
	}

	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (want %d)", snap.Version, snapshotVersion)
	}

	return &snap, nil
}
