package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/auth"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticate reads a bearer token from the Authorization header and puts
// its claims on the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePortal restricts a route group to sessions opened through one of
// the given portals.
func RequirePortal(portals ...string) func(http.Handler) http.Handler {
	return requireClaim(func(c *auth.Claims) string { return c.PortalType }, portals, "portal not permitted")
}

// RequireRole restricts a route group to the given staff positions.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return requireClaim(func(c *auth.Claims) string { return c.Role }, roles, "insufficient permissions")
}

func requireClaim(field func(*auth.Claims) string, allowed []string, denied string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}
			if !enum.Contains(allowed, field(claims)) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": denied})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithClaims returns a context carrying claims, for handlers exercised
// without the Authenticate middleware.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
