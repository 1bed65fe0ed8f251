package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/store"
	"github.com/roach88/fractalreg/internal/testutil"
)

// fixture is a registry over one backend with recorded notifications.
type fixture struct {
	reg    *Registry
	store  store.Store
	events *event.Recorder
}

// forEachBackend runs fn against a fresh registry per store backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Helper()

	newBackends := map[string]func(t *testing.T) store.Store{
		"sqlite": func(t *testing.T) store.Store {
			s, err := store.Open(filepath.Join(t.TempDir(), "registry.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"memory": func(t *testing.T) store.Store {
			return store.NewMemory()
		},
	}

	for name, open := range newBackends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			rec := &event.Recorder{}
			reg := New(s, WithEmitter(rec), WithCallIDGenerator(NewFixedGenerator("call-1")))
			fn(t, &fixture{reg: reg, store: s, events: rec})
		})
	}
}

func as(owner grant.AccountID) Call {
	return Call{Caller: owner, Now: testutil.At(0)}
}

func (f *fixture) insert(t *testing.T, owner grant.AccountID, grantee grant.PublicKey, dataID string, lockedUntil *uint64) {
	t.Helper()
	_, err := f.reg.InsertGrant(context.Background(), as(owner), grantee, dataID, lockedUntil)
	require.NoError(t, err)
}

func (f *fixture) find(t *testing.T, q Query) []grant.Grant {
	t.Helper()
	grants, err := f.reg.FindGrants(context.Background(), q)
	require.NoError(t, err)
	return grants
}

// requireConsistent asserts the index consistency invariant.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := f.reg.Verify(context.Background())
	require.NoError(t, err)
	require.True(t, report.OK(), report.String())
}

func dataIDs(grants []grant.Grant) []string {
	out := make([]string, len(grants))
	for i, g := range grants {
		out[i] = g.DataID
	}
	return out
}
