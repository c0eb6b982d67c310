// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to a catalog user.
type UserRole string

const (
	// Unrestricted access including integrity tooling
	RoleAdmin UserRole = "admin"

	// Can create, edit, move and delete catalog records
	RoleEditor UserRole = "editor"

	// Read-only access
	RoleViewer UserRole = "viewer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleEditor:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
