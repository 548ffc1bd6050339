package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/auth"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/idempotency"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/middleware"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// writeServiceError maps service and state machine errors to HTTP statuses.
// Anything unrecognised is a 500 and gets an ERROR line; the client only
// sees a generic message.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, billing.ErrInvalidDiscount), errors.Is(err, lifecycle.ErrUnknownStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrActorNotAllowed):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, service.ErrAlreadySettled),
		errors.Is(err, service.ErrNotSettled),
		errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrNotReady),
		errors.Is(err, idempotency.ErrInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Errorf("HTTP", "%s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// actor turns the session on the request into the principal the services
// check transitions against. It writes 401 and returns false when the
// request carries no session.
func actor(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return lifecycle.Actor{}, false
	}
	return actorFromClaims(claims), true
}

func actorFromClaims(c *auth.Claims) lifecycle.Actor {
	return lifecycle.Actor{Role: c.Role, StaffID: c.StaffID, CustomerID: c.CustomerID}
}

// urlID parses the {id} path parameter, writing 400 on failure.
func urlID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

func numericToString(n pgtype.Numeric) string {
	return billing.FromNumeric(n).StringFixed(2)
}

func uuidPtr(u pgtype.UUID) *string {
	if !u.Valid {
		return nil
	}
	s := uuid.UUID(u.Bytes).String()
	return &s
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func datePtr(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format("2006-01-02")
	return &s
}
