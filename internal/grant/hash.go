package grant

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DeriveID computes the identifier of a grant: the hex encoding of the
// legacy Keccak-256 digest of owner, grantee, data id and the decimal
// locked_until, concatenated with no separators.
//
// The fields are not length-prefixed, so tuples whose concatenations are
// equal collide (owner "ab" + data "c" vs owner "a" + data "bc" under the
// same grantee). The format is kept for compatibility with existing ids.
func DeriveID(g Grant) string {
	var b strings.Builder
	b.WriteString(string(g.Owner))
	b.WriteString(g.Grantee.String())
	b.WriteString(g.DataID)
	b.WriteString(strconv.FormatUint(g.LockedUntil, 10))

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// IsID reports whether s has the shape of a derived identifier.
func IsID(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
