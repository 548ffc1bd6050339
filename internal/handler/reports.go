package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetPaymentSummary(ctx context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error)
	CountOrdersByStatus(ctx context.Context, arg database.CountOrdersByStatusParams) ([]database.CountOrdersByStatusRow, error)
	CountRoomsByStatus(ctx context.Context) ([]database.CountRoomsByStatusRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store ReportsStore
	log   *logger.Logger
	now   func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, log: log, now: time.Now}
}

// RegisterRoutes registers management report endpoints.
// Expected to be mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

// --- Response types ---

type paymentSummaryResponse struct {
	PaymentMethod string `json:"payment_method"`
	OrderCount    int64  `json:"order_count"`
	Revenue       string `json:"revenue"`
	Discounts     string `json:"discounts"`
}

type summaryResponse struct {
	From          string                   `json:"from"`
	To            string                   `json:"to"`
	OrderCount    int64                    `json:"order_count"`
	Revenue       string                   `json:"revenue"`
	Discounts     string                   `json:"discounts"`
	Payments      []paymentSummaryResponse `json:"payments"`
	OrdersByState map[string]int64         `json:"orders_by_status"`
	RoomsByState  map[string]int64         `json:"rooms_by_status"`
}

// --- Handlers ---

// Summary returns settled revenue per payment method, order counts per status
// and the current room board for a date range.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	payments, err := h.store.GetPaymentSummary(r.Context(), database.GetPaymentSummaryParams{From: from, To: to})
	if err != nil {
		h.log.Errorf("REPORTS", "get payment summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	orders, err := h.store.CountOrdersByStatus(r.Context(), database.CountOrdersByStatusParams{From: from, To: to})
	if err != nil {
		h.log.Errorf("REPORTS", "count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	rooms, err := h.store.CountRoomsByStatus(r.Context())
	if err != nil {
		h.log.Errorf("REPORTS", "count rooms: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := summaryResponse{
		From:          from.Format("2006-01-02"),
		To:            to.AddDate(0, 0, -1).Format("2006-01-02"),
		Payments:      make([]paymentSummaryResponse, len(payments)),
		OrdersByState: make(map[string]int64, len(orders)),
		RoomsByState:  make(map[string]int64, len(rooms)),
	}
	revenue, discounts := decimal.Zero, decimal.Zero
	for i, p := range payments {
		resp.Payments[i] = paymentSummaryResponse{
			PaymentMethod: p.PaymentMethod,
			OrderCount:    p.OrderCount,
			Revenue:       numericToString(p.Revenue),
			Discounts:     numericToString(p.Discounts),
		}
		resp.OrderCount += p.OrderCount
		revenue = revenue.Add(billing.FromNumeric(p.Revenue))
		discounts = discounts.Add(billing.FromNumeric(p.Discounts))
	}
	resp.Revenue = revenue.StringFixed(2)
	resp.Discounts = discounts.StringFixed(2)
	for _, o := range orders {
		resp.OrdersByState[o.Status] = o.Count
	}
	for _, rm := range rooms {
		resp.RoomsByState[rm.Status] = rm.Count
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// reportZone is the hotel's local day boundary (EAT, UTC+3).
var reportZone = loadZone("Africa/Nairobi", "EAT", 3*3600)

func loadZone(name, abbr string, offset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(abbr, offset)
	}
	return loc
}

// parseDateRange parses from and to query params (YYYY-MM-DD) as local days.
// Defaults to today. The returned end is exclusive (next day midnight).
func parseDateRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	now = now.In(reportZone)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, reportZone)
	end := start.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.ParseInLocation(layout, s, reportZone)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
		}
		start = t
		if r.URL.Query().Get("to") == "" {
			end = t.AddDate(0, 0, 1)
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.ParseInLocation(layout, s, reportZone)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
		}
		end = t.AddDate(0, 0, 1)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must not be after to")
	}
	return start, end, nil
}
