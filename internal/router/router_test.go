package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/auth"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/config"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/router"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/ws"
	"github.com/google/uuid"
)

const testSecret = "router-test-secret"

// newTestRouter wires the router without a database. Only routes rejected
// before reaching a store may be exercised.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.JWTSecret = testSecret
	cfg.CORSOrigins = []string{"http://localhost:3000"}
	return router.New(cfg, router.Deps{Hub: ws.NewHub()})
}

func token(t *testing.T, s auth.Session) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, s)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func staffToken(t *testing.T, portal, role string) string {
	return token(t, auth.Session{PortalType: portal, Role: role, StaffID: uuid.New()})
}

func customerToken(t *testing.T) string {
	return token(t, auth.Session{PortalType: enum.PortalCustomer, Role: enum.RoleCustomer, CustomerID: uuid.New()})
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRouteGuards(t *testing.T) {
	r := newTestRouter(t)
	waiter := staffToken(t, enum.PortalStaff, enum.RoleWaitstaff)
	kitchen := staffToken(t, enum.PortalStaff, enum.RoleKitchen)
	manager := staffToken(t, enum.PortalManagement, enum.RoleManager)
	guest := customerToken(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"orders need a session", http.MethodGet, "/orders", "", http.StatusUnauthorized},
		{"menu needs a session", http.MethodGet, "/menu-items", "", http.StatusUnauthorized},
		{"kitchen cannot add menu items", http.MethodPost, "/menu-items", kitchen, http.StatusForbidden},
		{"guests cannot toggle availability", http.MethodPatch, "/menu-items/" + uuid.NewString() + "/availability", guest, http.StatusForbidden},
		{"guests cannot clean rooms", http.MethodPost, "/rooms/" + uuid.NewString() + "/clean", guest, http.StatusForbidden},
		{"guests cannot clear tables", http.MethodPost, "/tables/" + uuid.NewString() + "/clean", guest, http.StatusForbidden},
		{"guests cannot read the cleaning board", http.MethodGet, "/cleaning-tasks", guest, http.StatusForbidden},
		{"guests cannot list maintenance", http.MethodGet, "/maintenance-requests", guest, http.StatusForbidden},
		{"guests cannot read the feedback feed", http.MethodGet, "/ratings", guest, http.StatusForbidden},
		{"ratings need a session", http.MethodPost, "/ratings", "", http.StatusUnauthorized},
		{"guests cannot list deliveries", http.MethodGet, "/deliveries", guest, http.StatusForbidden},
		{"guests cannot look up customers", http.MethodGet, "/customers?phone=0711000111", guest, http.StatusForbidden},
		{"staff portal has no reports", http.MethodGet, "/reports/summary", waiter, http.StatusForbidden},
		{"managers cannot manage staff", http.MethodGet, "/staff", manager, http.StatusForbidden},
		{"websocket needs a token", http.MethodGet, "/ws/orders", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCORSExposesReplayHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != "Idempotent-Replayed" {
		t.Errorf("expected Idempotent-Replayed to be exposed, got %q", got)
	}
}
