package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	g := createTestGrant("A1", 7)

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Update(ctx, func(tx Tx) error {
		if err := tx.Grants().Put(ctx, g.ID(), g); err != nil {
			return err
		}
		return tx.Index(ByOwner).Append(ctx, g.Owner.String(), g.ID())
	}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	require.NoError(t, s2.View(ctx, func(tx Tx) error {
		got, ok, err := tx.Grants().Get(ctx, g.ID())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, g, got)

		ids, err := tx.Index(ByOwner).List(ctx, "alice.near")
		require.NoError(t, err)
		assert.Equal(t, []string{g.ID()}, ids)
		return nil
	}))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"grants", "grant_ids_by_owner", "grant_ids_by_grantee", "grant_ids_by_data_id"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	g := createTestGrant("A1", 0)
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		return tx.Grants().Put(ctx, g.ID(), g)
	}))
	require.NoError(t, s.View(ctx, func(tx Tx) error {
		_, ok, err := tx.Grants().Get(ctx, g.ID())
		assert.True(t, ok)
		return err
	}))
}

func TestClose_NilDB(t *testing.T) {
	s := &SQLiteStore{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestMigration_UserVersion(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestSchema_UniqueIDPerKey(t *testing.T) {
	s := createTestStore(t)

	for _, name := range IndexNames {
		table := indexTableName(name)
		_, err := s.db.Exec("INSERT INTO "+table+" (lookup_key, grant_id) VALUES ('k', 'g')")
		require.NoError(t, err, "index table %s", name)
		_, err = s.db.Exec("INSERT INTO "+table+" (lookup_key, grant_id) VALUES ('k', 'g')")
		assert.Error(t, err, "index table %s accepted a duplicate listing", name)
	}
}

func TestMigration_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}
