package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (database.Customer, error)
}

// CustomerHandler lets the front desk look guests up when booking on their
// behalf.
type CustomerHandler struct {
	store CustomerStore
	log   *logger.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{store: store, log: log}
}

// RegisterRoutes registers customer lookup endpoints. Expected to be mounted
// at /customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Lookup)
	r.Get("/{id}", h.Get)
}

type customerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       *string   `json:"email"`
	IsLoyal     bool      `json:"is_loyal"`
	TotalVisits int32     `json:"total_visits"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       textPtr(c.Email),
		IsLoyal:     c.IsLoyal,
		TotalVisits: c.TotalVisits,
		CreatedAt:   c.CreatedAt,
	}
}

// Lookup handles GET /customers?phone=.
func (h *CustomerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	phone, ok := service.NormalizePhone(r.URL.Query().Get("phone"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid phone is required"})
		return
	}

	c, err := h.store.GetCustomerByPhone(r.Context(), phone)
	h.respond(w, c, err)
}

// Get handles GET /customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "customer")
	if !ok {
		return
	}

	c, err := h.store.GetCustomer(r.Context(), id)
	h.respond(w, c, err)
}

func (h *CustomerHandler) respond(w http.ResponseWriter, c database.Customer, err error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		h.log.Errorf("CUSTOMERS", "get customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}
