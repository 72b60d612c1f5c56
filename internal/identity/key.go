package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
)

// ScopeKey is the canonical identity key within a tenant. Two keys are equal
// iff they target the same store, the same role, and the same email ignoring
// case and surrounding whitespace.
type ScopeKey struct {
	StoreID uuid.UUID
	Email   string
	Role    enums.IdentityRole
}

// DeriveKey normalizes (email, storeID, role) into a ScopeKey. It is pure:
// the same inputs always produce the same key, and it fails only when a
// component is empty or invalid.
func DeriveKey(email string, storeID uuid.UUID, role enums.IdentityRole) (ScopeKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ScopeKey{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !strings.Contains(normalized, "@") {
		return ScopeKey{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	if storeID == uuid.Nil {
		return ScopeKey{}, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if !role.IsValid() {
		return ScopeKey{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	return ScopeKey{
		StoreID: storeID,
		Email:   normalized,
		Role:    role,
	}, nil
}
