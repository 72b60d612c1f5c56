package enums

import "fmt"

// IdentityStatus tracks whether an identity currently occupies its scope key.
// Identities are never hard-deleted; disabling frees the key for re-registration.
type IdentityStatus string

const (
	IdentityStatusActive   IdentityStatus = "active"
	IdentityStatusDisabled IdentityStatus = "disabled"
)

var validIdentityStatuses = []IdentityStatus{
	IdentityStatusActive,
	IdentityStatusDisabled,
}

// String implements fmt.Stringer.
func (s IdentityStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known IdentityStatus.
func (s IdentityStatus) IsValid() bool {
	for _, candidate := range validIdentityStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseIdentityStatus converts raw input into an IdentityStatus.
func ParseIdentityStatus(value string) (IdentityStatus, error) {
	for _, candidate := range validIdentityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid identity status %q", value)
}
