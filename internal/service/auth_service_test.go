package service

import (
	"strings"
	"testing"
)

func TestGuestLoginRoundtrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	resp, err := svc.GuestLogin("Alice")
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if !strings.HasPrefix(resp.UID, "u_") {
		t.Errorf("UID = %q, want u_ prefix", resp.UID)
	}

	claims, err := svc.ValidateUserToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateUserToken: %v", err)
	}
	if claims.UID != resp.UID {
		t.Errorf("claims.UID = %q, want %q", claims.UID, resp.UID)
	}
	if claims.DisplayName != "Alice" {
		t.Errorf("claims.DisplayName = %q, want Alice", claims.DisplayName)
	}
}

func TestValidateUserTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret")

	if _, err := svc.ValidateUserToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateUserTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a")
	verifier := NewAuthService("secret-b")

	token, err := issuer.GenerateUserToken("u_123", "Bob")
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}

	if _, err := verifier.ValidateUserToken(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGuestLoginUIDsAreUnique(t *testing.T) {
	svc := NewAuthService("test-secret")

	a, err := svc.GuestLogin("Same Name")
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	b, err := svc.GuestLogin("Same Name")
	if err != nil {
		t.Fatalf("GuestLogin: %v", err)
	}
	if a.UID == b.UID {
		t.Errorf("two logins produced the same uid %q", a.UID)
	}
}
