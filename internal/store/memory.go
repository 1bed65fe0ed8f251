package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/roach88/fractalreg/internal/grant"
)

// MemoryStore keeps the registry tables in process memory.
//
// Updates record an undo entry for every write. When the update function
// fails, the entries are replayed in reverse so the tables return to their
// state before the update began.
//
// Thread-safety: View calls may run concurrently; Update runs alone.
type MemoryStore struct {
	mu      sync.RWMutex
	grants  map[string]grant.Grant
	indices map[IndexName]map[string][]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	m := &MemoryStore{
		grants:  make(map[string]grant.Grant),
		indices: make(map[IndexName]map[string][]string, len(IndexNames)),
	}
	for _, name := range IndexNames {
		m.indices[name] = make(map[string][]string)
	}
	return m
}

// View runs fn against the tables with writes rejected.
func (m *MemoryStore) View(ctx context.Context, fn func(Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fn(&memoryTx{m: m, readOnly: true})
}

// Update runs fn exclusively and undoes its writes if it fails.
func (m *MemoryStore) Update(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{m: m}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

type memoryTx struct {
	m        *MemoryStore
	readOnly bool
	undo     []func()
}

func (t *memoryTx) Grants() PrimaryTable {
	return &memoryPrimary{t: t}
}

func (t *memoryTx) Index(name IndexName) IndexTable {
	if !validIndex(name) {
		return unknownIndex{name: name}
	}
	return &memoryIndex{t: t, name: name, lists: t.m.indices[name]}
}

func (t *memoryTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memoryTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

type memoryPrimary struct {
	t *memoryTx
}

func (p *memoryPrimary) Get(_ context.Context, id string) (grant.Grant, bool, error) {
	g, ok := p.t.m.grants[id]
	return g, ok, nil
}

func (p *memoryPrimary) Put(_ context.Context, id string, g grant.Grant) error {
	if err := p.t.writable(); err != nil {
		return err
	}
	grants := p.t.m.grants
	prev, existed := grants[id]
	grants[id] = g
	p.t.undo = append(p.t.undo, func() {
		if existed {
			grants[id] = prev
		} else {
			delete(grants, id)
		}
	})
	return nil
}

func (p *memoryPrimary) Remove(_ context.Context, id string) error {
	if err := p.t.writable(); err != nil {
		return err
	}
	grants := p.t.m.grants
	prev, existed := grants[id]
	if !existed {
		return nil
	}
	delete(grants, id)
	p.t.undo = append(p.t.undo, func() { grants[id] = prev })
	return nil
}

func (p *memoryPrimary) Scan(_ context.Context, fn func(id string, g grant.Grant) error) error {
	ids := make([]string, 0, len(p.t.m.grants))
	for id := range p.t.m.grants {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := fn(id, p.t.m.grants[id]); err != nil {
			return err
		}
	}
	return nil
}

type memoryIndex struct {
	t     *memoryTx
	name  IndexName
	lists map[string][]string
}

func (ix *memoryIndex) List(_ context.Context, key string) ([]string, error) {
	ids := ix.lists[key]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (ix *memoryIndex) Append(_ context.Context, key, id string) error {
	if err := ix.t.writable(); err != nil {
		return err
	}
	prev, existed := ix.lists[key]
	if slices.Contains(prev, id) {
		return fmt.Errorf("append %s[%s]: %s already listed: %w", ix.name, key, id, ErrIndexCorrupt)
	}

	next := make([]string, len(prev), len(prev)+1)
	copy(next, prev)
	ix.lists[key] = append(next, id)
	ix.t.undo = append(ix.t.undo, ix.restore(key, prev, existed))
	return nil
}

func (ix *memoryIndex) Remove(_ context.Context, key, id string) error {
	if err := ix.t.writable(); err != nil {
		return err
	}
	prev, existed := ix.lists[key]
	if !existed || !slices.Contains(prev, id) {
		return fmt.Errorf("remove %s[%s]: %s not listed: %w", ix.name, key, id, ErrIndexCorrupt)
	}

	next := make([]string, 0, len(prev))
	for _, v := range prev {
		if v != id {
			next = append(next, v)
		}
	}
	ix.lists[key] = next
	ix.t.undo = append(ix.t.undo, ix.restore(key, prev, existed))
	return nil
}

func (ix *memoryIndex) restore(key string, prev []string, existed bool) func() {
	lists := ix.lists
	return func() {
		if existed {
			lists[key] = prev
		} else {
			delete(lists, key)
		}
	}
}

func (ix *memoryIndex) Scan(_ context.Context, fn func(key string, ids []string) error) error {
	keys := make([]string, 0, len(ix.lists))
	for key, ids := range ix.lists {
		// Emptied keys are kept in memory but hold nothing to report.
		if len(ids) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := fn(key, slices.Clone(ix.lists[key])); err != nil {
			return err
		}
	}
	return nil
}
