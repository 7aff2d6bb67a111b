package utils

import (
	"testing"
	"time"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, exp, err := m.GenerateJWTToken("dr.aminah", RoleDokter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected expiry in the future, got %v", exp)
	}

	claims, err := m.ValidateJWTToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Username != "dr.aminah" || claims.Role != RoleDokter {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Hour).GenerateJWTToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewJWTManager("two", time.Hour).ValidateJWTToken(token); err == nil {
		t.Fatal("expected validation error for a token signed with another secret")
	}
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("s", -time.Minute)
	token, _, err := m.GenerateJWTToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.ValidateJWTToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTManager_MissingSecret(t *testing.T) {
	if _, _, err := NewJWTManager("", time.Hour).GenerateJWTToken("x", RoleAdmin); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
