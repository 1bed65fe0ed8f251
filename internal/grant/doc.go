// Package grant defines the access-grant record and its identity.
//
// A grant records that an owner account authorized a grantee public key to
// access a named data id, optionally until a point in time. Grants carry no
// allocated sequence number: their identity is derived from content by
// DeriveID, so two grants with identical fields are the same grant.
//
// This package imports nothing internal. Every other package builds on it.
package grant
