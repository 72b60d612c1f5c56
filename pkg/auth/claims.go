package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/matjara-app/matjara-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	IdentityID uuid.UUID
	StoreID    uuid.UUID
	Role       enums.IdentityRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients. Tokens are
// store-scoped: the same person logging into two stores holds two tokens.
type AccessTokenClaims struct {
	IdentityID uuid.UUID          `json:"identity_id"`
	StoreID    uuid.UUID          `json:"store_id"`
	Role       enums.IdentityRole `json:"role"`
	jwt.RegisteredClaims
}
