package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/fractalreg/internal/event"
	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/store"
)

// InsertGrant records that call.Caller grants grantee access to dataID until
// lockedUntil (nil means no lock), and returns the new grant's id.
//
// Fails with ErrCodeDuplicateGrant if the identical grant already exists.
// On success emits one grant_inserted notification.
func (r *Registry) InsertGrant(
	ctx context.Context,
	call Call,
	grantee grant.PublicKey,
	dataID string,
	lockedUntil *uint64,
) (string, error) {
	if err := call.validate(); err != nil {
		return "", err
	}
	if err := validateGrantee(grantee); err != nil {
		return "", err
	}

	g := grant.Grant{
		Owner:       call.Caller,
		Grantee:     grantee,
		DataID:      dataID,
		LockedUntil: resolveLock(lockedUntil),
	}
	id := grant.DeriveID(g)

	err := r.store.Update(ctx, func(tx store.Tx) error {
		_, exists, err := tx.Grants().Get(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			return NewDuplicateError(id)
		}
		return fileGrant(ctx, tx, id, g)
	})
	if err != nil {
		return "", err
	}

	l := r.logger(ctx, "insert_grant")
	l.Debug("grant inserted", zap.String("grant_id", id), zap.String("owner", g.Owner.String()))
	r.emit(ctx, l, event.New(event.GrantInserted, eventData(g.Owner, grantee, dataID, lockedUntil)))
	return id, nil
}

// DeleteGrant removes call.Caller's grants to grantee on dataID.
//
// With lockedUntil nil or 0, every matching grant is a candidate regardless
// of its lock; otherwise only the grant with exactly that lock is. If any
// candidate's lock has not passed call.Now, the call fails with
// ErrCodeTimelocked and nothing is deleted.
//
// On success emits one grant_deleted notification, even when no grant
// matched.
func (r *Registry) DeleteGrant(
	ctx context.Context,
	call Call,
	grantee grant.PublicKey,
	dataID string,
	lockedUntil *uint64,
) error {
	if err := call.validate(); err != nil {
		return err
	}
	if err := validateGrantee(grantee); err != nil {
		return err
	}

	owner := call.Caller
	want := resolveLock(lockedUntil)

	var deleted int
	err := r.store.Update(ctx, func(tx store.Tx) error {
		ids, grants, err := findGrants(ctx, tx, Query{Owner: &owner, Grantee: &grantee, DataID: &dataID})
		if err != nil {
			return err
		}

		for i, g := range grants {
			if want != 0 && g.LockedUntil != want {
				continue
			}
			if g.Locked(call.Now) {
				return NewTimelockedError(ids[i])
			}
			if err := unfileGrant(ctx, tx, ids[i], g); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return err
	}

	l := r.logger(ctx, "delete_grant")
	l.Debug("grants deleted", zap.Int("count", deleted), zap.String("owner", owner.String()))
	r.emit(ctx, l, event.New(event.GrantDeleted, eventData(owner, grantee, dataID, lockedUntil)))
	return nil
}

func resolveLock(lockedUntil *uint64) uint64 {
	if lockedUntil == nil {
		return 0
	}
	return *lockedUntil
}

func eventData(owner grant.AccountID, grantee grant.PublicKey, dataID string, lockedUntil *uint64) event.Data {
	return event.Data{
		Owner:       owner,
		Grantee:     grantee,
		DataID:      dataID,
		LockedUntil: resolveLock(lockedUntil),
	}
}
