package grant

import (
	"encoding/json"
	"fmt"
)

// Account id length bounds.
const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// AccountID identifies the account that owns a grant.
//
// Valid ids are 2-64 characters of lowercase letters and digits, split into
// parts by '-', '_' or '.'. A separator may not lead, trail or follow
// another separator.
type AccountID string

// ParseAccountID validates s and returns it as an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	if err := validateAccountID(s); err != nil {
		return "", err
	}
	return AccountID(s), nil
}

// String returns the account id.
func (a AccountID) String() string {
	return string(a)
}

// UnmarshalJSON validates the account id while decoding.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func validateAccountID(s string) error {
	if len(s) < MinAccountIDLen {
		return fmt.Errorf("account id %q is too short", s)
	}
	if len(s) > MaxAccountIDLen {
		return fmt.Errorf("account id %q is too long", s)
	}

	lastSeparator := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastSeparator {
				return fmt.Errorf("account id %q has a misplaced separator at %d", s, i)
			}
			lastSeparator = true
		default:
			return fmt.Errorf("account id %q has invalid character %q at %d", s, c, i)
		}
	}
	if lastSeparator {
		return fmt.Errorf("account id %q ends with a separator", s)
	}
	return nil
}
