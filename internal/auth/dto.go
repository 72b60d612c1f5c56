package auth

import (
	"github.com/google/uuid"
	"github.com/matjara-app/matjara-backend/internal/identity"
	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// RegisterRequest carries a registration attempt for one store. Role comes
// from the route (customer signup vs admin provisioning), never from the
// request body.
type RegisterRequest struct {
	StoreID   uuid.UUID
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	Role      enums.IdentityRole
}

// RegisterResponse returns the created identity. The verification code is
// delivered out of band, not in the response.
type RegisterResponse struct {
	Identity *identity.IdentityDTO `json:"identity"`
}

// LoginRequest authenticates against one (store, role) scope.
type LoginRequest struct {
	StoreID  uuid.UUID
	Email    string
	Password string
	Role     enums.IdentityRole
}

// LoginResponse is the token pair handed to a signed-in client.
type LoginResponse struct {
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
	Identity     *identity.IdentityDTO `json:"identity"`
}

// RefreshRequest rotates a session using the expired access token plus the
// refresh token minted alongside it.
type RefreshRequest struct {
	AccessToken  string
	RefreshToken string
}

// RefreshResponse carries the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// VerifyEmailRequest confirms ownership of the registered address.
type VerifyEmailRequest struct {
	IdentityID uuid.UUID
	Code       string
}
