package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/fractalreg/internal/grant"
)

var (
	// ErrIndexCorrupt reports an index operation that contradicts the
	// tables' current contents.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrReadOnly is returned by writes attempted inside View.
	ErrReadOnly = errors.New("write in read-only transaction")

	// ErrUnknownIndex is returned by Tx.Index for an unknown index name.
	ErrUnknownIndex = errors.New("unknown index")
)

// IndexName names one of the secondary indices.
type IndexName string

const (
	ByOwner   IndexName = "owner"
	ByGrantee IndexName = "grantee"
	ByDataID  IndexName = "data_id"
)

// IndexNames lists every secondary index in a fixed order.
var IndexNames = []IndexName{ByOwner, ByGrantee, ByDataID}

// KeyOf returns the key a grant is filed under in the named index.
func KeyOf(name IndexName, g grant.Grant) string {
	switch name {
	case ByOwner:
		return g.Owner.String()
	case ByGrantee:
		return g.Grantee.String()
	case ByDataID:
		return g.DataID
	}
	panic(fmt.Sprintf("store: unknown index %q", name))
}

// PrimaryTable maps grant ids to grant records.
type PrimaryTable interface {
	// Get returns the grant stored under id and whether it exists.
	Get(ctx context.Context, id string) (grant.Grant, bool, error)

	// Put stores g under id.
	Put(ctx context.Context, id string, g grant.Grant) error

	// Remove deletes the record stored under id. Removing a missing id is
	// not an error.
	Remove(ctx context.Context, id string) error

	// Scan calls fn for every record in id order.
	Scan(ctx context.Context, fn func(id string, g grant.Grant) error) error
}

// IndexTable maps a lookup key to an ordered list of grant ids.
type IndexTable interface {
	// List returns the ids filed under key in insertion order.
	// A missing key yields an empty list.
	List(ctx context.Context, key string) ([]string, error)

	// Append adds id to the end of the list for key.
	Append(ctx context.Context, key, id string) error

	// Remove deletes id from the list for key. The key's list is kept even
	// when it becomes empty.
	Remove(ctx context.Context, key, id string) error

	// Scan calls fn for every key in key order with its ids in insertion order.
	Scan(ctx context.Context, fn func(key string, ids []string) error) error
}

// Tx is the view of the tables inside one atomic unit.
type Tx interface {
	Grants() PrimaryTable
	Index(name IndexName) IndexTable
}

// Store runs atomic units over the registry tables.
//
// Update runs fn exclusively: no other View or Update observes the tables
// while it runs. If fn returns an error, every write fn made is discarded
// and the error is returned unchanged.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
	Close() error
}

func validIndex(name IndexName) bool {
	for _, n := range IndexNames {
		if n == name {
			return true
		}
	}
	return false
}
