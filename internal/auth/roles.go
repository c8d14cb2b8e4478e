package auth

// Role represents a dormitory user role.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleMechanic Role = "mechanic"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleTenant, RoleMechanic, RoleManager, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleTenant:
		return 1
	case RoleMechanic:
		return 2
	case RoleManager:
		return 3
	case RoleAdmin:
		return 4
	default:
		return 0
	}
}
