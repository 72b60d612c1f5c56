package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
)

func TestDeriveKey_CaseInsensitiveOnEmail(t *testing.T) {
	storeID := uuid.New()

	a, err := DeriveKey("A@B.com", storeID, enums.IdentityRoleCustomer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := DeriveKey("  a@b.com ", storeID, enums.IdentityRoleCustomer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Fatalf("expected identical keys, got %+v vs %+v", a, b)
	}
	if a.Email != "a@b.com" {
		t.Fatalf("expected normalized email, got %q", a.Email)
	}
}

func TestDeriveKey_DistinctPerStoreAndRole(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()

	customerA, _ := DeriveKey("a@b.com", storeA, enums.IdentityRoleCustomer)
	customerB, _ := DeriveKey("a@b.com", storeB, enums.IdentityRoleCustomer)
	adminA, _ := DeriveKey("a@b.com", storeA, enums.IdentityRoleAdmin)

	if customerA == customerB {
		t.Fatal("same email in different stores must produce different keys")
	}
	if customerA == adminA {
		t.Fatal("same email with different roles must produce different keys")
	}
}

func TestDeriveKey_RejectsInvalidInputs(t *testing.T) {
	storeID := uuid.New()

	cases := []struct {
		name    string
		email   string
		storeID uuid.UUID
		role    enums.IdentityRole
	}{
		{name: "empty email", email: "   ", storeID: storeID, role: enums.IdentityRoleCustomer},
		{name: "missing at sign", email: "not-an-email", storeID: storeID, role: enums.IdentityRoleCustomer},
		{name: "nil store", email: "a@b.com", storeID: uuid.Nil, role: enums.IdentityRoleCustomer},
		{name: "bad role", email: "a@b.com", storeID: storeID, role: enums.IdentityRole("owner")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeriveKey(tc.email, tc.storeID, tc.role)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
