package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/handler"
	"github.com/go-chi/chi/v5"
)

// --- Mock store ---

type mockReportsStore struct {
	payments []database.GetPaymentSummaryRow
	orders   []database.CountOrdersByStatusRow
	rooms    []database.CountRoomsByStatusRow
	err      error

	from, to time.Time
}

func (m *mockReportsStore) GetPaymentSummary(_ context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error) {
	m.from, m.to = arg.From, arg.To
	return m.payments, m.err
}

func (m *mockReportsStore) CountOrdersByStatus(_ context.Context, _ database.CountOrdersByStatusParams) ([]database.CountOrdersByStatusRow, error) {
	return m.orders, nil
}

func (m *mockReportsStore) CountRoomsByStatus(_ context.Context) ([]database.CountRoomsByStatusRow, error) {
	return m.rooms, nil
}

func setupReportsRouter(store *mockReportsStore) *chi.Mux {
	h := handler.NewReportsHandler(store, nil)
	r := chi.NewRouter()
	r.Route("/reports", h.RegisterRoutes)
	return r
}

func TestReportSummary_Totals(t *testing.T) {
	store := &mockReportsStore{
		payments: []database.GetPaymentSummaryRow{
			{PaymentMethod: "mpesa", OrderCount: 3, Revenue: testNum("4500"), Discounts: testNum("159")},
			{PaymentMethod: "cash", OrderCount: 2, Revenue: testNum("1659"), Discounts: testNum("0")},
		},
		orders: []database.CountOrdersByStatusRow{{Status: "completed", Count: 5}, {Status: "pending", Count: 2}},
		rooms:  []database.CountRoomsByStatusRow{{Status: "available", Count: 10}, {Status: "cleaning", Count: 1}},
	}

	rr := doRequest(t, setupReportsRouter(store), http.MethodGet, "/reports/summary?from=2025-03-01&to=2025-03-10", nil, staffClaims(enum.RoleManager))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["revenue"] != "6159.00" || resp["discounts"] != "159.00" || resp["order_count"] != float64(5) {
		t.Errorf("unexpected totals %v", resp)
	}
	if resp["from"] != "2025-03-01" || resp["to"] != "2025-03-10" {
		t.Errorf("unexpected range %v..%v", resp["from"], resp["to"])
	}
	if resp["orders_by_status"].(map[string]interface{})["pending"] != float64(2) {
		t.Errorf("unexpected order counts %v", resp["orders_by_status"])
	}
	if resp["rooms_by_status"].(map[string]interface{})["cleaning"] != float64(1) {
		t.Errorf("unexpected room counts %v", resp["rooms_by_status"])
	}
	if len(resp["payments"].([]interface{})) != 2 {
		t.Error("expected two payment rows")
	}

	// The range is local hotel days: midnight EAT is 21:00 UTC the day before.
	wantFrom := time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	if !store.from.Equal(wantFrom) || !store.to.Equal(wantTo) {
		t.Errorf("expected [%s, %s), got [%s, %s)", wantFrom, wantTo, store.from.UTC(), store.to.UTC())
	}
}

func TestReportSummary_SingleDay(t *testing.T) {
	store := &mockReportsStore{}
	rr := doRequest(t, setupReportsRouter(store), http.MethodGet, "/reports/summary?from=2025-03-10", nil, staffClaims(enum.RoleAdmin))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := store.to.Sub(store.from); got != 24*time.Hour {
		t.Errorf("expected one day, got %s", got)
	}
	resp := decodeResponse(t, rr)
	if resp["revenue"] != "0.00" || resp["order_count"] != float64(0) {
		t.Errorf("empty day should report zeros: %v", resp)
	}
}

func TestReportSummary_BadRange(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{})
	for _, q := range []string{"from=yesterday", "to=2025-13-01", "from=2025-03-10&to=2025-03-01"} {
		rr := doRequest(t, router, http.MethodGet, "/reports/summary?"+q, nil, staffClaims(enum.RoleManager))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestReportSummary_StoreError(t *testing.T) {
	rr := doRequest(t, setupReportsRouter(&mockReportsStore{err: errors.New("db down")}), http.MethodGet, "/reports/summary", nil, staffClaims(enum.RoleManager))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}
