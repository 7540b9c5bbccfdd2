package enums

import "fmt"

// UserRole governs access to administrative endpoints.
type UserRole string

const (
	UserRoleOwner  UserRole = "OWNER"
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleFriend UserRole = "FRIEND"
	UserRolePaid   UserRole = "PAID"
	UserRoleUser   UserRole = "USER"
)

var validUserRoles = []UserRole{
	UserRoleOwner,
	UserRoleAdmin,
	UserRoleFriend,
	UserRolePaid,
	UserRoleUser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the role is recognized.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role may manage other users.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleOwner || r == UserRoleAdmin
}

// Priority orders roles for listings, lowest first.
func (r UserRole) Priority() int {
	for i, candidate := range validUserRoles {
		if candidate == r {
			return i + 1
		}
	}
	return len(validUserRoles) + 1
}

// ParseUserRole converts a raw string into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
