package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/auth"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetStaffByEmail(ctx context.Context, email string) (database.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (database.Staff, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
}

// CustomerLoginer signs customers in by phone. Satisfied by
// *service.CustomerService.
type CustomerLoginer interface {
	Login(ctx context.Context, name, phone, email string) (database.Customer, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	customers CustomerLoginer
	jwtSecret string
	log       *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, customers CustomerLoginer, jwtSecret string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{store: store, customers: customers, jwtSecret: jwtSecret, log: log}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/staff/login", h.StaffLogin)
	r.Post("/auth/customer/login", h.CustomerLogin)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type staffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerLoginRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Session      sessionResponse `json:"session"`
}

type sessionResponse struct {
	PortalType string     `json:"portal_type"`
	Role       string     `json:"role"`
	StaffID    *uuid.UUID `json:"staff_id,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Name       string     `json:"name"`
}

// --- Handlers ---

// StaffLogin handles email + password authentication. Admins and managers
// are issued a management-portal session; everyone else a staff session.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	staff, err := h.store.GetStaffByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.log.LogSecurity("LOGIN_FAILED", fmt.Sprintf("unknown staff email %q", email))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		h.log.Errorf("AUTH", "get staff by email: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.HashedPassword), []byte(req.Password)); err != nil {
		h.log.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for %q", email))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	h.respondWithTokens(w, staffSession(staff), auth.SubjectStaff, staff.ID)
}

// CustomerLogin signs a guest in by name and phone, creating the customer on
// first visit.
func (h *AuthHandler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req customerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := h.customers.Login(r.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		writeServiceError(w, h.log, "customer login", err)
		return
	}

	h.respondWithTokens(w, customerSession(c), auth.SubjectCustomer, c.ID)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
// The staff member or customer is looked up again so deactivated staff lose
// access at the next refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh_token is required"})
		return
	}

	kind, id, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	var session auth.Session
	switch kind {
	case auth.SubjectStaff:
		staff, err := h.store.GetStaff(r.Context(), id)
		if err != nil {
			h.refreshLookupFailed(w, err)
			return
		}
		session = staffSession(staff)
	case auth.SubjectCustomer:
		c, err := h.store.GetCustomer(r.Context(), id)
		if err != nil {
			h.refreshLookupFailed(w, err)
			return
		}
		session = customerSession(c)
	default:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	h.respondWithTokens(w, session, kind, id)
}

// --- Helpers ---

func (h *AuthHandler) refreshLookupFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}
	h.log.Errorf("AUTH", "refresh lookup: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func staffSession(s database.Staff) auth.Session {
	portal := enum.PortalStaff
	if enum.Contains(enum.ManagementRoles, string(s.Position)) {
		portal = enum.PortalManagement
	}
	return auth.Session{
		PortalType: portal,
		Role:       string(s.Position),
		StaffID:    s.ID,
		Name:       s.FullName,
	}
}

func customerSession(c database.Customer) auth.Session {
	return auth.Session{
		PortalType: enum.PortalCustomer,
		Role:       enum.RoleCustomer,
		CustomerID: c.ID,
		Name:       c.Name,
	}
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, s auth.Session, kind string, id uuid.UUID) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, s)
	if err != nil {
		h.log.Errorf("AUTH", "generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, kind, id)
	if err != nil {
		h.log.Errorf("AUTH", "generate refresh token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := sessionResponse{PortalType: s.PortalType, Role: s.Role, Name: s.Name}
	if s.StaffID != uuid.Nil {
		resp.StaffID = &s.StaffID
	}
	if s.CustomerID != uuid.Nil {
		resp.CustomerID = &s.CustomerID
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Session:      resp,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
