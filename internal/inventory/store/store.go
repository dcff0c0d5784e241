// Package store provides the snapshot persistence substrate for the
// inventory ledger. The ledger serializes its full state to a single blob
// under a fixed key; drivers only move bytes and never interpret them.
package store

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when no snapshot exists yet for
// the given key. The ledger treats this as an empty start, not a failure.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store persists ledger snapshots keyed by a fixed name
type Store interface {
	// Load returns the snapshot bytes for key, or ErrSnapshotNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the snapshot for key with data. Each save overwrites
	// the previous snapshot completely; there are no partial writes.
	Save(ctx context.Context, key string, data []byte) error
}
