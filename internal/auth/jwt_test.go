package auth_test

import (
	"testing"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/auth"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	session := auth.Session{
		PortalType: "staff",
		Role:       "kitchen",
		StaffID:    uuid.New(),
		Name:       "Achieng Otieno",
	}

	token, err := auth.GenerateToken(secret, session)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if got := claims.Session(); got != session {
		t.Errorf("session: got %+v, want %+v", got, session)
	}
	if claims.CustomerID != uuid.Nil {
		t.Errorf("customer ID: got %v, want nil", claims.CustomerID)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", auth.Session{PortalType: "staff", Role: "waitstaff", StaffID: uuid.New()})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	id := uuid.New()
	refresh, err := auth.GenerateRefreshToken("secret", auth.SubjectCustomer, id)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	if _, err := auth.ValidateToken("secret", refresh); err == nil {
		t.Fatal("expected refresh token to be rejected as access token")
	}

	kind, got, err := auth.ValidateRefreshToken("secret", refresh)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if kind != auth.SubjectCustomer || got != id {
		t.Errorf("subject: got %s:%v, want customer:%v", kind, got, id)
	}
}

func TestValidateRefreshTokenRejectsBadSubject(t *testing.T) {
	refresh, err := auth.GenerateRefreshToken("secret", "vendor", uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	if _, _, err := auth.ValidateRefreshToken("secret", refresh); err == nil {
		t.Fatal("expected unknown subject kind to be rejected")
	}
}
