package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RatingServicer is satisfied by *service.RatingService.
type RatingServicer interface {
	Create(ctx context.Context, req service.CreateRatingRequest) (database.Rating, error)
	ListRecent(ctx context.Context, staffID uuid.UUID, limit int32) ([]database.ListRecentRatingsRow, error)
	WaitstaffScores(ctx context.Context) ([]database.WaitstaffScore, error)
}

// RatingHandler serves customer feedback and the waitstaff scoreboard.
type RatingHandler struct {
	svc RatingServicer
	log *logger.Logger
}

func NewRatingHandler(svc RatingServicer, log *logger.Logger) *RatingHandler {
	return &RatingHandler{svc: svc, log: log}
}

// RegisterRoutes registers rating endpoints. Expected to be mounted at
// /ratings. Customers post and browse the scoreboard; staffOnly gates the
// feedback feed.
func (h *RatingHandler) RegisterRoutes(r chi.Router, staffOnly func(http.Handler) http.Handler) {
	r.Post("/", h.Create)
	r.Get("/waitstaff", h.Waitstaff)
	r.With(staffOnly).Get("/", h.List)
}

type createRatingRequest struct {
	StaffID string `json:"staff_id"`
	OrderID string `json:"order_id"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

type ratingResponse struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   *string   `json:"customer_id"`
	CustomerName *string   `json:"customer_name,omitempty"`
	StaffID      *string   `json:"staff_id"`
	OrderID      *string   `json:"order_id"`
	Rating       int32     `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

type waitstaffScoreResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Rating      string    `json:"rating"`
	TotalOrders int32     `json:"total_orders"`
}

// Create handles POST /ratings.
func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	var req createRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rating, err := h.svc.Create(r.Context(), service.CreateRatingRequest{
		StaffID: req.StaffID,
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
		Actor:   act,
	})
	if err != nil {
		writeServiceError(w, h.log, "create rating", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRatingResponse(rating))
}

// List handles GET /ratings?staff_id=&limit=. The waitstaff dashboard shows
// the latest five.
func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	staffID := uuid.Nil
	if s := q.Get("staff_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
			return
		}
		staffID = id
	}
	var limit int32
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = int32(v)
	}

	list, err := h.svc.ListRecent(r.Context(), staffID, limit)
	if err != nil {
		writeServiceError(w, h.log, "list ratings", err)
		return
	}
	resp := make([]ratingResponse, len(list))
	for i, row := range list {
		resp[i] = toRatingResponse(row.Rating)
		resp[i].CustomerName = textPtr(row.CustomerName)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Waitstaff handles GET /ratings/waitstaff.
func (h *RatingHandler) Waitstaff(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.WaitstaffScores(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "list waitstaff scores", err)
		return
	}
	resp := make([]waitstaffScoreResponse, len(scores))
	for i, s := range scores {
		resp[i] = waitstaffScoreResponse{
			ID:          s.ID,
			FullName:    s.FullName,
			Rating:      billing.FromNumeric(s.Rating).StringFixed(1),
			TotalOrders: s.TotalOrders,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toRatingResponse(r database.Rating) ratingResponse {
	return ratingResponse{
		ID:         r.ID,
		CustomerID: uuidPtr(r.CustomerID),
		StaffID:    uuidPtr(r.StaffID),
		OrderID:    uuidPtr(r.OrderID),
		Rating:     r.Rating,
		Comment:    textPtr(r.Comment),
		CreatedAt:  r.CreatedAt,
	}
}
