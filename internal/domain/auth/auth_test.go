package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "unit-test-secret"
	claims := Claims{
		UserID:    "u1",
		Name:      "Sara Ahmed",
		Username:  "sara",
		JobNumber: "E-1042",
		Role:      RoleHR,
	}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Role != RoleHR || parsed.Username != "sara" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "u1", Role: RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", Role: RoleEmployee}, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := CheckPassword(hash, "correct horse battery"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch to fail")
	}
}

func TestCanEnterArea(t *testing.T) {
	if !CanEnterArea(RoleAdmin, "hr") || !CanEnterArea(RoleAdmin, "employee") {
		t.Fatal("admin covers every area")
	}
	if !CanEnterArea(RoleManager, "manager") {
		t.Fatal("manager enters their own area")
	}
	if CanEnterArea(RoleManager, "admin") || CanEnterArea(RoleEmployee, "hr") {
		t.Fatal("non-admin roles are confined to their own area")
	}
	if CanEnterArea("intern", "employee") {
		t.Fatal("unknown roles enter nothing")
	}
}

func TestHomePath(t *testing.T) {
	cases := map[string]string{
		RoleAdmin:    "/admin/dashboard",
		RoleHR:       "/hr/dashboard",
		RoleManager:  "/manager/dashboard",
		RoleEmployee: "/employee/dashboard",
		"unknown":    "/employee/dashboard",
	}
	for role, want := range cases {
		if got := HomePath(role); got != want {
			t.Fatalf("HomePath(%q) = %q, want %q", role, got, want)
		}
	}
}
