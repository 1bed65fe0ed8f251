package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/fractalreg/internal/grant"
)

// createTestStore creates a new file-backed SQLite store for testing.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns a fresh instance of every Store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"sqlite": createTestStore(t),
		"memory": NewMemory(),
	}
}

// createTestGrant creates a grant owned by alice.near for the given data id.
func createTestGrant(dataID string, lockedUntil uint64) grant.Grant {
	return grant.Grant{
		Owner:       "alice.near",
		Grantee:     grant.MustParsePublicKey("ed25519:9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6"),
		DataID:      dataID,
		LockedUntil: lockedUntil,
	}
}
