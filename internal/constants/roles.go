package constants

import "strings"

// Role is carried in admin bearer tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

func (r Role) String() string { return string(r) }

// CanSync reports whether the role may trigger provider syncs.
func (r Role) CanSync() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanDeactivate reports whether the role may hide airports from listings.
func (r Role) CanDeactivate() bool {
	return r == RoleAdmin
}

// ParseRole accepts the known role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleOperator:
		return RoleOperator, true
	}
	return "", false
}
