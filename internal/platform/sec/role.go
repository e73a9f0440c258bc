// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including account administration
	RoleAdmin UserRole = "Admin"

	// Default role for standard registered users
	RoleCustomer UserRole = "Customer"
)

// ParseUserRole maps a stored role string to a [UserRole], falling back
// to [RoleCustomer] for unknown values.
func ParseUserRole(raw string) UserRole {
	if UserRole(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleCustomer:
		return 10
	default:
		return 0
	}
}
