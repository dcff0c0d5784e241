package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists snapshots as JSON files under a base directory, one
// file per key. Writes go through a temp file and rename so a crash mid-save
// never leaves a truncated snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file store writing to the given snapshot path.
// The parent directory is created if missing.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

// keyPath maps a snapshot key onto a file next to the configured path.
// The configured path is used directly for the default key so a single-key
// deployment keeps the filename from its config.
func (s *FileStore) keyPath(key string) string {
	if key == "" || key == "inventory_ledger" {
		return s.path
	}
	dir := filepath.Dir(s.path)
	return filepath.Join(dir, key+".json")
}

// Load reads the snapshot file for key
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if os.IsNotExist(err) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Save atomically replaces the snapshot file for key
func (s *FileStore) Save(_ context.Context, key string, data []byte) error {
	target := s.keyPath(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
