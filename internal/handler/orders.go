package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/idempotency"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const idempotencyScope = "orders"

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, f service.OrderFilter, actor lifecycle.Actor) ([]database.Order, error)
	UpdateStatus(ctx context.Context, req service.UpdateStatusRequest) (database.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Order, error)
}

// IdempotencyGuard deduplicates order submissions carrying the same
// Idempotency-Key. Satisfied by *idempotency.Guard.
type IdempotencyGuard interface {
	Begin(ctx context.Context, scope, key string) (string, error)
	Finish(ctx context.Context, scope, key, result string) error
	Abort(ctx context.Context, scope, key string) error
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc  OrderServicer
	idem IdempotencyGuard
	log  *logger.Logger
}

// NewOrderHandler creates a new OrderHandler. idem may be nil, in which
// case Idempotency-Key headers are ignored.
func NewOrderHandler(svc OrderServicer, idem IdempotencyGuard, log *logger.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, idem: idem, log: log}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/cancel", h.Cancel)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType  string                   `json:"order_type"`
	CustomerID string                   `json:"customer_id"`
	TableID    string                   `json:"table_id"`
	RoomID     string                   `json:"room_id"`
	Notes      string                   `json:"notes"`
	Items      []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes"`
}

type updateStatusRequest struct {
	Status          string `json:"status"`
	DeliveryAddress string `json:"delivery_address"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     int32               `json:"order_number"`
	OrderType       string              `json:"order_type"`
	CustomerID      *string             `json:"customer_id"`
	StaffID         *string             `json:"staff_id"`
	TableID         *string             `json:"table_id"`
	RoomID          *string             `json:"room_id"`
	Status          string              `json:"status"`
	Subtotal        string              `json:"subtotal"`
	ServiceCharge   string              `json:"service_charge"`
	VAT             string              `json:"vat"`
	Discount        string              `json:"discount"`
	Total           string              `json:"total"`
	PaymentMethod   *string             `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	TransactionCode *string             `json:"transaction_code"`
	Notes           *string             `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	CompletedAt     *time.Time          `json:"completed_at"`
	Items           []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name,omitempty"`
	Quantity   int32     `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// Create handles POST /orders. A repeated Idempotency-Key replays the order
// created by the first request instead of creating another.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	scope := idempotencyScope + ":" + actorKey(act)
	guarded := false
	if key != "" && h.idem != nil {
		prev, err := h.idem.Begin(r.Context(), scope, key)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			writeServiceError(w, h.log, "create order", err)
			return
		case err != nil:
			// Redis trouble should not stop the restaurant taking orders.
			h.log.Warn("IDEMPOTENCY", fmt.Sprintf("begin %s: %v", key, err))
		case prev != "":
			h.replay(w, r, prev, act)
			return
		default:
			guarded = true
		}
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Notes:      it.Notes,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		OrderType:  req.OrderType,
		CustomerID: req.CustomerID,
		TableID:    req.TableID,
		RoomID:     req.RoomID,
		Notes:      req.Notes,
		Items:      items,
		Actor:      act,
	})
	if err != nil {
		if guarded {
			if aerr := h.idem.Abort(r.Context(), scope, key); aerr != nil {
				h.log.Warn("IDEMPOTENCY", fmt.Sprintf("abort %s: %v", key, aerr))
			}
		}
		writeServiceError(w, h.log, "create order", err)
		return
	}

	if guarded {
		if ferr := h.idem.Finish(r.Context(), scope, key, result.Order.ID.String()); ferr != nil {
			// A key stuck in progress would answer 409 to every retry until it expires.
			h.log.Errorf("IDEMPOTENCY", "finish %s for order %s: %v", key, result.Order.ID, ferr)
			if aerr := h.idem.Abort(r.Context(), scope, key); aerr != nil {
				h.log.Warn("IDEMPOTENCY", fmt.Sprintf("abort %s: %v", key, aerr))
			}
		}
	}

	resp := dbOrderToResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		resp.Items[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  numericToString(it.UnitPrice),
			TotalPrice: numericToString(it.TotalPrice),
			Status:     string(it.Status),
			Notes:      textPtr(it.Notes),
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) replay(w http.ResponseWriter, r *http.Request, orderID string, act lifecycle.Actor) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		h.log.Errorf("IDEMPOTENCY", "stored result %q is not an order id", orderID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	detail, err := h.svc.GetOrder(r.Context(), id, act)
	if err != nil {
		writeServiceError(w, h.log, "replay order", err)
		return
	}
	w.Header().Set("Idempotent-Replayed", "true")
	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	// Parse pagination
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	f := service.OrderFilter{
		Statuses:      splitList(r.URL.Query().Get("status")),
		OrderTypes:    splitList(r.URL.Query().Get("type")),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		Limit:         int32(limit),
		Offset:        int32(offset),
	}

	orders, err := h.svc.ListOrders(r.Context(), f, act)
	if err != nil {
		writeServiceError(w, h.log, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "order")
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), orderID, act)
	if err != nil {
		writeServiceError(w, h.log, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), service.UpdateStatusRequest{
		OrderID:         orderID,
		Status:          database.OrderStatus(req.Status),
		Actor:           act,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		writeServiceError(w, h.log, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	orderID, ok := urlID(w, r, "order")
	if !ok {
		return
	}

	cancelled, err := h.svc.Cancel(r.Context(), orderID, act)
	if err != nil {
		writeServiceError(w, h.log, "cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(cancelled))
}

// --- Helpers ---

func actorKey(a lifecycle.Actor) string {
	if a.IsStaff() {
		return "staff:" + a.StaffID.String()
	}
	return "customer:" + a.CustomerID.String()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dbOrderToResponse(o database.Order) orderResponse {
	var method *string
	if o.PaymentMethod.Valid {
		m := string(o.PaymentMethod.PaymentMethod)
		method = &m
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       string(o.OrderType),
		CustomerID:      uuidPtr(o.CustomerID),
		StaffID:         uuidPtr(o.StaffID),
		TableID:         uuidPtr(o.TableID),
		RoomID:          uuidPtr(o.RoomID),
		Status:          string(o.Status),
		Subtotal:        numericToString(o.Subtotal),
		ServiceCharge:   numericToString(o.ServiceCharge),
		VAT:             numericToString(o.Vat),
		Discount:        numericToString(o.Discount),
		Total:           numericToString(o.Total),
		PaymentMethod:   method,
		PaymentStatus:   string(o.PaymentStatus),
		TransactionCode: textPtr(o.TransactionCode),
		Notes:           textPtr(o.Notes),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		CompletedAt:     timePtr(o.CompletedAt),
	}
}

func detailToResponse(d *service.OrderDetail) orderResponse {
	resp := dbOrderToResponse(d.Order)
	resp.Items = make([]orderItemResponse, len(d.Items))
	for i, it := range d.Items {
		resp.Items[i] = orderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.MenuItemName,
			Quantity:   it.Quantity,
			UnitPrice:  numericToString(it.UnitPrice),
			TotalPrice: numericToString(it.TotalPrice),
			Status:     string(it.Status),
			Notes:      textPtr(it.Notes),
		}
	}
	return resp
}
