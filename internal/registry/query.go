package registry

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/store"
)

// Query selects grants. Nil fields are unconstrained; at least one of Owner
// or Grantee must be set. DataID alone is rejected so a data id cannot be
// used to enumerate everyone holding access to it.
type Query struct {
	Owner   *grant.AccountID
	Grantee *grant.PublicKey
	DataID  *string
}

// FindGrants returns the grants matching every criterion in q.
//
// Results follow the insertion order of the owner list when an owner is
// given, otherwise of the grantee list. Callers should not rely on it.
// A query matching nothing returns an empty slice, not an error.
func (r *Registry) FindGrants(ctx context.Context, q Query) ([]grant.Grant, error) {
	if q.Owner == nil && q.Grantee == nil {
		return nil, NewInvalidQueryError()
	}
	if q.Grantee != nil {
		if err := validateGrantee(*q.Grantee); err != nil {
			return nil, err
		}
	}

	var found []grant.Grant
	err := r.store.View(ctx, func(tx store.Tx) error {
		_, grants, err := findGrants(ctx, tx, q)
		found = grants
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger(ctx, "find_grants").Debug("grants found", zap.Int("count", len(found)))
	return found, nil
}

// GrantsFor returns the grants giving grantee access to dataID, from any owner.
func (r *Registry) GrantsFor(ctx context.Context, grantee grant.PublicKey, dataID string) ([]grant.Grant, error) {
	return r.FindGrants(ctx, Query{Grantee: &grantee, DataID: &dataID})
}

// findGrants intersects the index lists of every supplied criterion and
// resolves the surviving ids. Returned ids and grants are parallel.
func findGrants(ctx context.Context, tx store.Tx, q Query) ([]string, []grant.Grant, error) {
	if q.Owner == nil && q.Grantee == nil {
		return nil, nil, NewInvalidQueryError()
	}

	type criterion struct {
		index store.IndexName
		key   string
	}
	var criteria []criterion
	if q.Owner != nil {
		criteria = append(criteria, criterion{store.ByOwner, q.Owner.String()})
	}
	if q.Grantee != nil {
		criteria = append(criteria, criterion{store.ByGrantee, q.Grantee.String()})
	}
	if q.DataID != nil {
		criteria = append(criteria, criterion{store.ByDataID, *q.DataID})
	}

	lists := make([][]string, len(criteria))
	for i, c := range criteria {
		ids, err := tx.Index(c.index).List(ctx, c.key)
		if err != nil {
			return nil, nil, fmt.Errorf("find grants: %w", err)
		}
		lists[i] = ids
	}

	head, tail := lists[0], lists[1:]
	filters := make([]mapset.Set[string], len(tail))
	for i, ids := range tail {
		filters[i] = mapset.NewThreadUnsafeSet(ids...)
	}

	ids := []string{}
	grants := []grant.Grant{}
	for _, id := range head {
		if !inAll(filters, id) {
			continue
		}
		g, ok, err := tx.Grants().Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("find grants: %w", err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("find grants: %s listed but not stored: %w", id, store.ErrIndexCorrupt)
		}
		ids = append(ids, id)
		grants = append(grants, g)
	}

	return ids, grants, nil
}

func inAll(sets []mapset.Set[string], id string) bool {
	for _, s := range sets {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}
