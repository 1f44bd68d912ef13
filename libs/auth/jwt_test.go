package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyHS256(t *testing.T) {
	claims := Claims{
		Sub:        "user-1",
		ProviderID: "provider-1",
		Role:       "provider",
		Exp:        time.Now().Add(time.Hour).Unix(),
		Iat:        time.Now().Unix(),
	}

	token, err := SignHS256(claims, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	got, err := ParseAndVerifyHS256(token, "secret")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.Sub != claims.Sub || got.ProviderID != claims.ProviderID || got.Role != claims.Role {
		t.Fatalf("claims mismatch: %+v", got)
	}
}

func TestVerifyHS256_WrongSecret(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()}, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "other"); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyHS256_Expired(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "user-1", Exp: time.Now().Add(-time.Minute).Unix()}, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseAndVerifyHS256(token, "secret"); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseHeader(t *testing.T) {
	token, err := SignHS256(Claims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()}, "secret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	header, err := ParseHeader(token)
	if err != nil {
		t.Fatalf("parse header failed: %v", err)
	}
	if header.Alg != "HS256" {
		t.Fatalf("expected HS256, got %q", header.Alg)
	}
}
