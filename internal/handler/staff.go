package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

// StaffStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StaffStore interface {
	ListStaff(ctx context.Context, position string) ([]database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	CreateStaff(ctx context.Context, arg database.CreateStaffParams) (database.Staff, error)
	DeactivateStaff(ctx context.Context, id uuid.UUID) error
}

// StaffHandler handles staff account endpoints.
type StaffHandler struct {
	store StaffStore
	log   *logger.Logger
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore, log *logger.Logger) *StaffHandler {
	return &StaffHandler{store: store, log: log}
}

// RegisterRoutes registers staff endpoints. Expected to be mounted at /staff
// behind an admin role check.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Deactivate)
}

// --- Request / Response types ---

type createStaffRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Position string `json:"position"`
	Phone    string `json:"phone"`
}

type staffResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"is_active"`
	HireDate  *string   `json:"hire_date"`
	CreatedAt time.Time `json:"created_at"`
}

func toStaffResponse(s database.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		FullName:  s.FullName,
		Email:     s.Email,
		Position:  string(s.Position),
		Phone:     textPtr(s.Phone),
		IsActive:  s.IsActive,
		HireDate:  datePtr(s.HireDate),
		CreatedAt: s.CreatedAt,
	}
}

// --- Handlers ---

// List returns active staff, optionally filtered by ?position=.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.store.ListStaff(r.Context(), r.URL.Query().Get("position"))
	if err != nil {
		h.log.Errorf("STAFF", "list staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff account with a bcrypt-hashed password.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.Position == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, password, full_name, and position are required"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email format"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}
	if !isValidPosition(database.StaffPosition(req.Position)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid position"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.Errorf("STAFF", "hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	phone := pgtype.Text{}
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = pgtype.Text{String: p, Valid: true}
	}

	member, err := h.store.CreateStaff(r.Context(), database.CreateStaffParams{
		FullName:       req.FullName,
		Email:          req.Email,
		HashedPassword: string(hashed),
		Position:       database.StaffPosition(req.Position),
		Phone:          phone,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already exists"})
			return
		}
		h.log.Errorf("STAFF", "create staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toStaffResponse(member))
}

// Deactivate soft-deletes a staff account. Admins cannot deactivate
// themselves.
func (h *StaffHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "staff")
	if !ok {
		return
	}
	if c := middleware.ClaimsFromContext(r.Context()); c != nil && c.StaffID == id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot deactivate your own account"})
		return
	}

	if _, err := h.store.GetStaff(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "staff not found"})
			return
		}
		h.log.Errorf("STAFF", "get staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.DeactivateStaff(r.Context(), id); err != nil {
		h.log.Errorf("STAFF", "deactivate staff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func isValidPosition(p database.StaffPosition) bool {
	switch p {
	case database.StaffPositionAdmin, database.StaffPositionManager, database.StaffPositionReceptionist,
		database.StaffPositionWaitstaff, database.StaffPositionKitchen, database.StaffPositionCleaning,
		database.StaffPositionDelivery:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
