package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReservationServicer defines the service methods needed by reservation
// handlers. Satisfied by *service.ReservationService.
type ReservationServicer interface {
	Create(ctx context.Context, req service.CreateReservationRequest) (database.Reservation, error)
	Get(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
	List(ctx context.Context, f service.ReservationFilter, actor lifecycle.Actor) ([]database.Reservation, error)
	Confirm(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
	CheckIn(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
	CheckOut(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error)
}

// ReservationHandler handles room and table booking endpoints.
type ReservationHandler struct {
	svc ReservationServicer
	log *logger.Logger
}

func NewReservationHandler(svc ReservationServicer, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, log: log}
}

// RegisterRoutes registers reservation endpoints. Expected to be mounted at
// /reservations.
func (h *ReservationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/confirm", h.transition("confirm reservation", ReservationServicer.Confirm))
	r.Post("/{id}/check-in", h.transition("check in", ReservationServicer.CheckIn))
	r.Post("/{id}/check-out", h.transition("check out", ReservationServicer.CheckOut))
	r.Post("/{id}/cancel", h.transition("cancel reservation", ReservationServicer.Cancel))
}

// --- Request / Response types ---

type createReservationRequest struct {
	ReservationType string `json:"reservation_type"`
	CustomerID      string `json:"customer_id"`
	RoomID          string `json:"room_id"`
	TableID         string `json:"table_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	TimeSlot        string `json:"time_slot"`
	Guests          int32  `json:"guests"`
	PaymentMethod   string `json:"payment_method"`
	TransactionCode string `json:"transaction_code"`
	SpecialRequests string `json:"special_requests"`
}

type reservationResponse struct {
	ID              uuid.UUID `json:"id"`
	ReservationType string    `json:"reservation_type"`
	CustomerID      uuid.UUID `json:"customer_id"`
	RoomID          *string   `json:"room_id"`
	TableID         *string   `json:"table_id"`
	CheckIn         *string   `json:"check_in"`
	CheckOut        *string   `json:"check_out"`
	TimeSlot        *string   `json:"time_slot"`
	Guests          int32     `json:"guests"`
	Status          string    `json:"status"`
	PrepayAmount    string    `json:"prepay_amount"`
	PrepayStatus    string    `json:"prepay_status"`
	PaymentMethod   *string   `json:"payment_method"`
	TransactionCode *string   `json:"transaction_code"`
	SpecialRequests *string   `json:"special_requests"`
	CreatedAt       time.Time `json:"created_at"`
}

// --- Handlers ---

// Create handles POST /reservations.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := h.svc.Create(r.Context(), service.CreateReservationRequest{
		ReservationType: req.ReservationType,
		CustomerID:      req.CustomerID,
		RoomID:          req.RoomID,
		TableID:         req.TableID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		TimeSlot:        req.TimeSlot,
		Guests:          req.Guests,
		PaymentMethod:   req.PaymentMethod,
		TransactionCode: req.TransactionCode,
		SpecialRequests: req.SpecialRequests,
		Actor:           act,
	})
	if err != nil {
		writeServiceError(w, h.log, "create reservation", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

// List handles GET /reservations.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := service.ReservationFilter{
		Statuses:        splitList(q.Get("status")),
		ReservationType: q.Get("type"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = int32(v)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = int32(v)
	}

	list, err := h.svc.List(r.Context(), f, act)
	if err != nil {
		writeServiceError(w, h.log, "list reservations", err)
		return
	}

	resp := make([]reservationResponse, len(list))
	for i, res := range list {
		resp[i] = toReservationResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /reservations/{id}.
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "reservation")
	if !ok {
		return
	}

	res, err := h.svc.Get(r.Context(), id, act)
	if err != nil {
		writeServiceError(w, h.log, "get reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

type reservationMove func(ReservationServicer, context.Context, uuid.UUID, lifecycle.Actor) (database.Reservation, error)

func (h *ReservationHandler) transition(op string, move reservationMove) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, ok := actor(w, r)
		if !ok {
			return
		}
		id, ok := urlID(w, r, "reservation")
		if !ok {
			return
		}

		res, err := move(h.svc, r.Context(), id, act)
		if err != nil {
			writeServiceError(w, h.log, op, err)
			return
		}
		writeJSON(w, http.StatusOK, toReservationResponse(res))
	}
}

func toReservationResponse(r database.Reservation) reservationResponse {
	var method *string
	if r.PaymentMethod.Valid {
		m := string(r.PaymentMethod.PaymentMethod)
		method = &m
	}
	return reservationResponse{
		ID:              r.ID,
		ReservationType: string(r.ReservationType),
		CustomerID:      r.CustomerID,
		RoomID:          uuidPtr(r.RoomID),
		TableID:         uuidPtr(r.TableID),
		CheckIn:         datePtr(r.CheckIn),
		CheckOut:        datePtr(r.CheckOut),
		TimeSlot:        textPtr(r.TimeSlot),
		Guests:          r.Guests,
		Status:          string(r.Status),
		PrepayAmount:    numericToString(r.PrepayAmount),
		PrepayStatus:    string(r.PrepayStatus),
		PaymentMethod:   method,
		TransactionCode: textPtr(r.TransactionCode),
		SpecialRequests: textPtr(r.SpecialRequests),
		CreatedAt:       r.CreatedAt,
	}
}
