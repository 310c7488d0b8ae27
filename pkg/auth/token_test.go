package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"stocktally-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stocktally",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	payload := AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "shopkeeper",
	}

	signed, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s got %s", payload.UserID, claims.UserID)
	}
	if claims.Username != "shopkeeper" {
		t.Fatalf("unexpected username %q", claims.Username)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestMintAccessTokenPreservesJTI(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    "session-123",
	}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.ID != "session-123" {
		t.Fatalf("expected jti session-123 got %q", claims.ID)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()

	if _, err := MintAccessToken(config.JWTConfig{Issuer: "i", ExpirationMinutes: 5}, now, AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := MintAccessToken(config.JWTConfig{Secret: "s", ExpirationMinutes: 5}, now, AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing issuer")
	}
	if _, err := MintAccessToken(testJWTConfig(), now, AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{UserID: uuid.New()}

	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), payload)
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired returned error: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s got %s", payload.UserID, claims.UserID)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}
