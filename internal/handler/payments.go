package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementServicer defines the service methods needed by payment handlers.
// Satisfied by *service.SettlementService.
type SettlementServicer interface {
	Settle(ctx context.Context, req service.SettleRequest) (*service.SettleResult, error)
	Receipt(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (billing.Receipt, error)
}

// PaymentHandler handles settlement and receipt endpoints.
type PaymentHandler struct {
	svc SettlementServicer
	log *logger.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc SettlementServicer, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log}
}

// RegisterRoutes registers payment endpoints on the given Chi router.
// Expected to be mounted at /orders alongside the order routes.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/settle", h.Settle)
	r.Get("/{id}/receipt", h.Receipt)
}

// --- Request / Response types ---

type settleRequest struct {
	PaymentMethod   string `json:"payment_method"`
	TransactionCode string `json:"transaction_code"`
	Discount        string `json:"discount"`
}

type settleResponse struct {
	Order   orderResponse   `json:"order"`
	Receipt billing.Receipt `json:"receipt"`
}

// --- Handlers ---

// Settle handles POST /orders/{id}/settle.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "order")
	if !ok {
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	discount := decimal.Zero
	if s := strings.TrimSpace(req.Discount); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount"})
			return
		}
		discount = d
	}

	result, err := h.svc.Settle(r.Context(), service.SettleRequest{
		OrderID:         orderID,
		Method:          req.PaymentMethod,
		TransactionCode: req.TransactionCode,
		Discount:        discount,
		Actor:           act,
	})
	if err != nil {
		writeServiceError(w, h.log, "settle order", err)
		return
	}

	writeJSON(w, http.StatusOK, settleResponse{
		Order:   dbOrderToResponse(result.Order),
		Receipt: result.Receipt,
	})
}

// Receipt handles GET /orders/{id}/receipt. Clients that accept text/plain
// get the thermal printer layout instead of JSON.
func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "order")
	if !ok {
		return
	}

	receipt, err := h.svc.Receipt(r.Context(), orderID, act)
	if err != nil {
		writeServiceError(w, h.log, "get receipt", err)
		return
	}

	if wantsText(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(receipt.Render())) //nolint:errcheck
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func wantsText(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}
