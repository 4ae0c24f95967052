package domain

import dErrors "aidchain/pkg/domain-errors"

// Role is the operational role bound to an account by the registry.
// Invariant: exactly one of the enum values below; RoleNone is the implicit
// default for accounts the registry has never seen.
//
// The numeric values are part of the public read API and match the original
// deployment (None=0, Transporter=1, GroundRelief=2, Recipient=3).
type Role uint8

const (
	RoleNone Role = iota
	RoleTransporter
	RoleGroundRelief
	RoleRecipient
)

var roleNames = map[Role]string{
	RoleNone:         "none",
	RoleTransporter:  "transporter",
	RoleGroundRelief: "ground_relief",
	RoleRecipient:    "recipient",
}

var rolesByName = map[string]Role{
	"none":          RoleNone,
	"transporter":   RoleTransporter,
	"ground_relief": RoleGroundRelief,
	"recipient":     RoleRecipient,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput for unknown names. RoleNone parses but is
// not registrable; services reject it separately so the error surfaces with
// domain context.
func ParseRole(s string) (Role, error) {
	r, ok := rolesByName[s]
	if !ok {
		return RoleNone, dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", s)
	}
	return r, nil
}

// IsAssignable reports whether the role can be registered and assigned to an
// aid unit slot.
func (r Role) IsAssignable() bool {
	return r == RoleTransporter || r == RoleGroundRelief || r == RoleRecipient
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "none"
}
