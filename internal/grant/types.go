package grant

import (
	"fmt"
	"strconv"
)

// Grant is an authorization record. Grants are immutable: a different
// LockedUntil yields a different identity and therefore a different grant.
type Grant struct {
	Owner       AccountID `json:"owner"`
	Grantee     PublicKey `json:"grantee"`
	DataID      string    `json:"data_id"`
	LockedUntil uint64    `json:"locked_until"`
}

// ID returns the content-derived identifier of g.
func (g Grant) ID() string {
	return DeriveID(g)
}

// Locked reports whether g is still time-locked at now.
// A grant may only be deleted once LockedUntil is strictly less than now.
func (g Grant) Locked(now uint64) bool {
	return g.LockedUntil >= now
}

// String renders the grant for diagnostics.
func (g Grant) String() string {
	return fmt.Sprintf("%s -> %s on %q (locked_until=%s)",
		g.Owner, g.Grantee, g.DataID, strconv.FormatUint(g.LockedUntil, 10))
}
