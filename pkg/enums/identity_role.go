package enums

import "fmt"

// IdentityRole represents the role an identity holds within a store.
type IdentityRole string

const (
	IdentityRoleCustomer IdentityRole = "customer"
	IdentityRoleAdmin    IdentityRole = "admin"
)

var validIdentityRoles = []IdentityRole{
	IdentityRoleCustomer,
	IdentityRoleAdmin,
}

// String implements fmt.Stringer.
func (r IdentityRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known IdentityRole.
func (r IdentityRole) IsValid() bool {
	for _, candidate := range validIdentityRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseIdentityRole converts raw input into an IdentityRole.
func ParseIdentityRole(value string) (IdentityRole, error) {
	for _, candidate := range validIdentityRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid identity role %q", value)
}
