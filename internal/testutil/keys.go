// Package testutil holds fixtures shared by package tests.
package testutil

import "github.com/roach88/fractalreg/internal/grant"

// Well-formed ed25519 public keys, one per test persona.
var (
	Bob     = grant.MustParsePublicKey("ed25519:9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6")
	Charlie = grant.MustParsePublicKey("ed25519:DWYPy4ZMGHsN5o7VSRrMeRAG47Eo85ViQzkjVn7jDKF9")
	Eve     = grant.MustParsePublicKey("ed25519:9xkyoPm8xs4PFuonyoTMMbHxi4crcvmpsBsFkukYrELJ")
	Dave    = grant.MustParsePublicKey("ed25519:7bDXTe5fFehXPtVMMh9cL5hxcjNenk8g34eCNRTiuBTs")
)

// Owner accounts.
const (
	Alice   grant.AccountID = "alice.near"
	Mallory grant.AccountID = "mallory.near"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
