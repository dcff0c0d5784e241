package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklight/stocklight-backend/internal/inventory/store"
	"github.com/stocklight/stocklight-backend/pkg/logger"
	"github.com/stocklight/stocklight-backend/pkg/testutil"
)

// ============================================================================
// MEMORY STORE TESTS
// ============================================================================

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load of a missing key reports not found", func(t *testing.T) {
		s := store.NewMemoryStore()
		_, err := s.Load(ctx, "nope")
		assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		s := store.NewMemoryStore()
		require.NoError(t, s.Save(ctx, "k", []byte(`{"a":1}`)))

		data, err := s.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), data)
	})

	t.Run("stored bytes are isolated from caller mutation", func(t *testing.T) {
		s := store.NewMemoryStore()
		in := []byte("original")
		require.NoError(t, s.Save(ctx, "k", in))
		in[0] = 'X'

		out, err := s.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), out)

		out[0] = 'Y'
		again, err := s.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), again)
	})
}

// ============================================================================
// FILE STORE TESTS
// ============================================================================

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the parent directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "ledger.json")

		_, err := store.NewFileStore(path)
		require.NoError(t, err)

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("load of a missing file reports not found", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		s, err := store.NewFileStore(path)
		require.NoError(t, err)

		_, err = s.Load(ctx, "inventory_ledger")
		assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	})

	t.Run("default key maps to the configured path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		s, err := store.NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, "inventory_ledger", []byte(`{"v":1}`)))

		onDisk, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":1}`), onDisk)

		data, err := s.Load(ctx, "inventory_ledger")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":1}`), data)
	})

	t.Run("other keys get their own file beside the configured path", func(t *testing.T) {
		dir := t.TempDir()
		s, err := store.NewFileStore(filepath.Join(dir, "ledger.json"))
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, "other", []byte("x")))

		_, statErr := os.Stat(filepath.Join(dir, "other.json"))
		assert.NoError(t, statErr)
	})

	t.Run("save leaves no temp file behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ledger.json")
		s, err := store.NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Save(ctx, "inventory_ledger", []byte("a")))
		require.NoError(t, s.Save(ctx, "inventory_ledger", []byte("bb")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "ledger.json", entries[0].Name())

		data, err := s.Load(ctx, "inventory_ledger")
		require.NoError(t, err)
		assert.Equal(t, []byte("bb"), data)
	})
}

// ============================================================================
// POSTGRES STORE TESTS
// ============================================================================

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	log := logger.New("test", "test")

	t.Run("load returns the stored blob", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.ExpectQuery(`SELECT data FROM ledger_snapshots WHERE key = $1`).
			WithArgs("inventory_ledger").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"version":1}`)))

		s := store.NewPostgresStoreWithDB(mockDB.DB, log)
		data, err := s.Load(ctx, "inventory_ledger")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"version":1}`), data)

		mockDB.ExpectationsWereMet(t)
	})

	t.Run("load of a missing key reports not found", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.ExpectQuery(`SELECT data FROM ledger_snapshots WHERE key = $1`).
			WithArgs("inventory_ledger").
			WillReturnRows(sqlmock.NewRows([]string{"data"}))

		s := store.NewPostgresStoreWithDB(mockDB.DB, log)
		_, err := s.Load(ctx, "inventory_ledger")
		assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

		mockDB.ExpectationsWereMet(t)
	})

	t.Run("save upserts the blob", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.Mock.ExpectExec("INSERT INTO ledger_snapshots").
			WithArgs("inventory_ledger", []byte(`{"version":1}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := store.NewPostgresStoreWithDB(mockDB.DB, log)
		require.NoError(t, s.Save(ctx, "inventory_ledger", []byte(`{"version":1}`)))

		mockDB.ExpectationsWereMet(t)
	})
}
