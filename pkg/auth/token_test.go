package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matjara-app/matjara-backend/pkg/config"
	"github.com/matjara-app/matjara-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "matjara-test",
		ExpirationMinutes: 15,
	}
}

func basePayload() AccessTokenPayload {
	return AccessTokenPayload{
		IdentityID: uuid.New(),
		StoreID:    uuid.New(),
		Role:       enums.IdentityRoleCustomer,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	payload := basePayload()
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig(), signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.IdentityID != payload.IdentityID {
		t.Fatalf("identity mismatch: %s vs %s", claims.IdentityID, payload.IdentityID)
	}
	if claims.StoreID != payload.StoreID {
		t.Fatal("store mismatch")
	}
	if claims.Role != enums.IdentityRoleCustomer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	cfg := testJWTConfig()

	missingIdentity := basePayload()
	missingIdentity.IdentityID = uuid.Nil
	if _, err := MintAccessToken(cfg, time.Now(), missingIdentity); err == nil {
		t.Fatal("expected error for missing identity id")
	}

	badRole := basePayload()
	badRole.Role = "superuser"
	if _, err := MintAccessToken(cfg, time.Now(), badRole); err == nil {
		t.Fatal("expected error for invalid role")
	}

	if _, err := MintAccessToken(config.JWTConfig{}, time.Now(), basePayload()); err == nil {
		t.Fatal("expected error for empty config")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	signed, err := MintAccessToken(testJWTConfig(), time.Now().Add(-time.Hour), basePayload())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseAccessToken(testJWTConfig(), signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	claims, err := ParseAccessTokenAllowExpired(testJWTConfig(), signed)
	if err != nil {
		t.Fatalf("parse expired token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected jti from expired token")
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), basePayload())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := testJWTConfig()
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestMintAccessTokenKeepsProvidedJTI(t *testing.T) {
	payload := basePayload()
	payload.JTI = "session-123"
	signed, err := MintAccessToken(testJWTConfig(), time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(), signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.ID != "session-123" {
		t.Fatalf("expected provided jti, got %s", claims.ID)
	}
}
