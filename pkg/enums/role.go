package enums

import (
	"fmt"
	"strings"
)

// Role is the account role reported by the remote API at login.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

var validRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleStaff,
	RoleCustomer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsBackOffice reports whether the role sees every order instead of only its own.
func (r Role) IsBackOffice() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// ParseRole converts raw input into a Role. The remote API reports roles in upper case.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
