package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aidchain/pkg/domain-errors"
)

// TestParseAccount_Invariants validates the parsing invariant:
// a non-zero Account is exactly "0x" plus 40 hex digits, lower-cased.
func TestParseAccount_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccount("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects missing prefix", func(t *testing.T) {
		_, err := ParseAccount(strings.Repeat("a", 42))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseAccount("0xabc")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = ParseAccount("0x" + strings.Repeat("a", 41))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-hex characters", func(t *testing.T) {
		_, err := ParseAccount("0x" + strings.Repeat("g", 40))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("lower-cases mixed input", func(t *testing.T) {
		a, err := ParseAccount("0x" + strings.Repeat("Ab", 20))
		require.NoError(t, err)
		assert.Equal(t, Account("0x"+strings.Repeat("ab", 20)), a)
		assert.False(t, a.IsZero())
	})

	t.Run("zero value is the absent marker", func(t *testing.T) {
		var a Account
		assert.True(t, a.IsZero())
	})
}

func TestParseAmount_Invariants(t *testing.T) {
	t.Run("rejects empty, malformed, negative", func(t *testing.T) {
		for _, input := range []string{"", "abc", "1.5", "-1", "0x10"} {
			_, err := ParseAmount(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("accepts values beyond int64", func(t *testing.T) {
		a, err := ParseAmount("340282366920938463463374607431768211456")
		require.NoError(t, err)
		assert.Equal(t, "340282366920938463463374607431768211456", a.String())
	})

	t.Run("add does not mutate operands", func(t *testing.T) {
		a := NewAmount(320000000000000000)
		b := NewAmount(13000000000000000)
		sum := a.Add(b)
		assert.Equal(t, "333000000000000000", sum.String())
		assert.Equal(t, "320000000000000000", a.String())
		assert.Equal(t, "13000000000000000", b.String())
	})

	t.Run("zero value behaves as zero", func(t *testing.T) {
		var a Amount
		assert.True(t, a.IsZero())
		assert.Equal(t, 0, a.Cmp(ZeroAmount()))
		assert.Equal(t, "0", a.String())
	})
}

func TestRole(t *testing.T) {
	t.Run("parses canonical names", func(t *testing.T) {
		for name, want := range map[string]Role{
			"none":          RoleNone,
			"transporter":   RoleTransporter,
			"ground_relief": RoleGroundRelief,
			"recipient":     RoleRecipient,
		} {
			r, err := ParseRole(name)
			require.NoError(t, err)
			assert.Equal(t, want, r)
			assert.Equal(t, name, r.String())
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParseRole("admin")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("none is not assignable", func(t *testing.T) {
		assert.False(t, RoleNone.IsAssignable())
		assert.True(t, RoleTransporter.IsAssignable())
		assert.True(t, RoleGroundRelief.IsAssignable())
		assert.True(t, RoleRecipient.IsAssignable())
	})
}

func TestDeliveryStatus(t *testing.T) {
	t.Run("labels are fixed by the public contract", func(t *testing.T) {
		assert.Equal(t, "Issued", StatusIssued.Label())
		assert.Equal(t, "InTransit", StatusInTransit.Label())
		assert.Equal(t, "Delivered", StatusDelivered.Label())
		assert.Equal(t, "Claimed", StatusClaimed.Label())
	})

	t.Run("labels round-trip", func(t *testing.T) {
		for _, status := range []DeliveryStatus{StatusIssued, StatusInTransit, StatusDelivered, StatusClaimed} {
			got, err := ParseDeliveryStatus(status.Label())
			require.NoError(t, err)
			assert.Equal(t, status, got)
		}
	})

	t.Run("rejects unknown labels", func(t *testing.T) {
		_, err := ParseDeliveryStatus("in_transit")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseUnitID(t *testing.T) {
	t.Run("accepts zero", func(t *testing.T) {
		id, err := ParseUnitID("0")
		require.NoError(t, err)
		assert.Equal(t, UnitID(0), id)
	})

	t.Run("rejects empty, negative, non-numeric", func(t *testing.T) {
		for _, input := range []string{"", "-1", "seven", "1.0"} {
			_, err := ParseUnitID(input)
			require.Error(t, err, "input %q", input)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}
