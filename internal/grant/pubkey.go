package grant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyType is the curve of a public key.
type KeyType string

const (
	ED25519   KeyType = "ed25519"
	SECP256K1 KeyType = "secp256k1"
)

// keyLen is the decoded key data length per curve.
var keyLen = map[KeyType]int{
	ED25519:   32,
	SECP256K1: 64,
}

// PublicKey identifies a grantee. The zero value is not a valid key; use
// ParsePublicKey. The underlying string is always the canonical
// "<curve>:<base58>" form.
type PublicKey string

// ParsePublicKey parses "<curve>:<base58 data>". A string without a curve
// prefix is read as an ed25519 key.
func ParsePublicKey(s string) (PublicKey, error) {
	curve, data := ED25519, s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		curve, data = KeyType(s[:i]), s[i+1:]
	}

	want, ok := keyLen[curve]
	if !ok {
		return "", fmt.Errorf("public key %q: unknown curve %q", s, curve)
	}

	raw, err := base58.Decode(data)
	if err != nil {
		return "", fmt.Errorf("public key %q: %w", s, err)
	}
	if len(raw) != want {
		return "", fmt.Errorf("public key %q: %s key must be %d bytes, got %d", s, curve, want, len(raw))
	}

	return PublicKey(string(curve) + ":" + base58.Encode(raw)), nil
}

// MustParsePublicKey is like ParsePublicKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the canonical "<curve>:<base58>" form.
func (k PublicKey) String() string {
	return string(k)
}

// Validate reports an error unless k is a well-formed key already in
// canonical form. Keys built by conversion rather than ParsePublicKey may
// carry the bare ed25519 form, which derives different grant ids.
func (k PublicKey) Validate() error {
	parsed, err := ParsePublicKey(string(k))
	if err != nil {
		return err
	}
	if parsed != k {
		return fmt.Errorf("public key %q: not canonical, want %q", string(k), string(parsed))
	}
	return nil
}

// UnmarshalJSON parses and canonicalizes the key while decoding.
func (k *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
