package domain

import (
	"math/big"

	dErrors "aidchain/pkg/domain-errors"
)

// Amount is a non-negative monetary quantity in minor units. Arbitrary
// precision so cumulative donor balances can never overflow; values are
// immutable, every operation returns a fresh Amount.
type Amount struct {
	v *big.Int
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount { return Amount{v: new(big.Int)} }

// NewAmount builds an Amount from a non-negative int64. Useful for
// configuration defaults and tests.
func NewAmount(n int64) Amount {
	if n < 0 {
		n = 0
	}
	return Amount{v: big.NewInt(n)}
}

// ParseAmount constructs an Amount from a base-10 string.
//
// Errors: returns CodeInvalidInput for empty, malformed, or negative values.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, dErrors.Newf(dErrors.CodeInvalidInput, "malformed amount %q", s)
	}
	if v.Sign() < 0 {
		return Amount{}, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be negative")
	}
	return Amount{v: v}, nil
}

// Add returns a + b without mutating either operand.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), b.big())}
}

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// IsZero reports whether the amount is zero (including the zero value).
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

func (a Amount) String() string { return a.big().String() }

// big normalizes the zero value so an uninitialized Amount behaves as zero.
func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}
