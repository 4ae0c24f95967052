package domain

import (
	"strconv"

	dErrors "aidchain/pkg/domain-errors"
)

// UnitID identifies an issued aid unit. IDs are assigned in issuance order,
// starting at 0 and incrementing by 1; they are never reused.
type UnitID uint64

// ParseUnitID constructs a UnitID from external input.
func ParseUnitID(s string) (UnitID, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unit id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "malformed unit id %q", s)
	}
	return UnitID(n), nil
}

func (id UnitID) String() string { return strconv.FormatUint(uint64(id), 10) }
