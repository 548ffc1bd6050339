package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

// Subject kinds used in refresh tokens.
const (
	SubjectStaff    = "staff"
	SubjectCustomer = "customer"
)

// Session describes who is signed in and through which portal. It is built
// once at login and travels inside the access token.
type Session struct {
	PortalType string
	Role       string
	StaffID    uuid.UUID
	CustomerID uuid.UUID
	Name       string
}

type Claims struct {
	PortalType string    `json:"portal_type"`
	Role       string    `json:"role"`
	StaffID    uuid.UUID `json:"staff_id,omitempty"`
	CustomerID uuid.UUID `json:"customer_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Session returns the descriptor the token was issued for.
func (c *Claims) Session() Session {
	return Session{
		PortalType: c.PortalType,
		Role:       c.Role,
		StaffID:    c.StaffID,
		CustomerID: c.CustomerID,
		Name:       c.Name,
	}
}

func GenerateToken(secret string, s Session) (string, error) {
	claims := Claims{
		PortalType: s.PortalType,
		Role:       s.Role,
		StaffID:    s.StaffID,
		CustomerID: s.CustomerID,
		Name:       s.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken issues a long-lived token whose subject is
// "<kind>:<id>", e.g. "staff:6f1c...".
func GenerateRefreshToken(secret, kind string, id uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   kind + ":" + id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses an access token. Refresh tokens are rejected.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc(secret))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.PortalType == "" || claims.Role == "" {
		return nil, fmt.Errorf("invalid token: missing session")
	}
	return claims, nil
}

// ValidateRefreshToken returns the subject kind and id of a refresh token.
func ValidateRefreshToken(secret, tokenStr string) (string, uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, keyFunc(secret))
	if err != nil {
		return "", uuid.Nil, err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", uuid.Nil, fmt.Errorf("invalid token")
	}
	kind, rawID, found := strings.Cut(claims.Subject, ":")
	if !found || (kind != SubjectStaff && kind != SubjectCustomer) {
		return "", uuid.Nil, fmt.Errorf("invalid refresh subject")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("invalid refresh subject: %w", err)
	}
	return kind, id, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}
