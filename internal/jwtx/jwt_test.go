package jwtx

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/common"
)

func TestGenerateAndInspect(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := GenerateToken("user-123", []byte("super-secret"), exp)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := Inspect(tok)
	if err != nil {
		t.Fatalf("Inspect error: %v", err)
	}
	if claims.UserID != "user-123" || claims.Subject != "user-123" {
		t.Fatalf("user mismatch: %+v", claims)
	}

	got, ok := ExpiresAt(tok)
	if !ok {
		t.Fatalf("expected exp claim")
	}
	if !got.Equal(exp) {
		t.Fatalf("exp mismatch: got %v want %v", got, exp)
	}
}

func TestInspect_IgnoresSignatureAndExpiry(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	tok, err := GenerateToken("u1", []byte("someone-elses-key"), past)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := Inspect(tok); err != nil {
		t.Fatalf("Inspect should not verify: %v", err)
	}
	if !Expired(tok, time.Now()) {
		t.Fatalf("expected token to be expired")
	}
}

func TestInspect_Opaque(t *testing.T) {
	t.Parallel()

	_, err := Inspect("opaque-refresh-token")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, ok := ExpiresAt("opaque-refresh-token"); ok {
		t.Fatalf("opaque token must not report expiry")
	}
	if Expired("opaque-refresh-token", time.Now()) {
		t.Fatalf("opaque token must not be considered expired")
	}
}

func TestExpired_Boundary(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok, err := GenerateToken("u", []byte("k"), exp)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if Expired(tok, exp.Add(-time.Second)) {
		t.Fatalf("not yet expired")
	}
	if !Expired(tok, exp) {
		t.Fatalf("expired exactly at exp")
	}
}
