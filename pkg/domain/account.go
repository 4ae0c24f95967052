package domain

import (
	"strings"

	dErrors "aidchain/pkg/domain-errors"
)

// Account is the opaque public identifier of a participant, in the
// platform-native 0x-prefixed hex form.
// Invariant: a non-zero Account is exactly "0x" followed by 40 hex digits,
// stored lower-cased so map lookups and equality are case-insensitive.
//
// The zero value means "no account". Assignment slots on an aid unit use it
// as the explicit absent marker; there is no reachable magic null address.
type Account string

// ParseAccount constructs an Account from external input.
//
// Usage: call from handlers/adapters when parsing requests; direct casting
// bypasses validation.
//
// Errors: returns CodeInvalidInput when the value is empty or malformed.
func ParseAccount(s string) (Account, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account cannot be empty")
	}
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account must be a 0x-prefixed 20-byte hex address")
	}
	for _, c := range s[2:] {
		if !isHexDigit(c) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account contains non-hex characters")
		}
	}
	return Account(strings.ToLower(s)), nil
}

// IsZero reports whether the account is the absent marker.
func (a Account) IsZero() bool { return a == "" }

func (a Account) String() string { return string(a) }

func isHexDigit(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
