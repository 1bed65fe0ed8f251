// Package registry implements the access-grant registry.
//
// A Registry answers four calls:
//
//   - InsertGrant: the caller grants a public key access to a data id,
//     optionally time-locked. Re-inserting an identical grant is rejected.
//   - DeleteGrant: the caller revokes its matching grants. Any still
//     time-locked candidate aborts the whole call.
//   - FindGrants: grants matching every supplied criterion. Owner or grantee
//     is required.
//   - GrantsFor: FindGrants by grantee and data id.
//
// Every call runs as one store Update or View, so the primary table and the
// three indices are never observed disagreeing. Notifications are emitted
// only after a mutating call commits.
//
// The authenticated caller and the time reference arrive in a Call value;
// the registry reads neither from ambient state.
package registry
