package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) (database.MenuItem, error)
}

// MenuHandler handles menu item endpoints.
type MenuHandler struct {
	store MenuStore
	log   *logger.Logger
}

func NewMenuHandler(store MenuStore, log *logger.Logger) *MenuHandler {
	return &MenuHandler{store: store, log: log}
}

// RegisterRoutes registers menu endpoints. Expected to be mounted at
// /menu-items. creators and togglers gate item creation and the
// availability switch.
func (h *MenuHandler) RegisterRoutes(r chi.Router, creators, togglers func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.With(creators).Post("/", h.Create)
	r.With(togglers).Patch("/{id}/availability", h.SetAvailability)
}

// --- Request / Response types ---

type createMenuItemRequest struct {
	Category        string `json:"category"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	PreparationTime int32  `json:"preparation_time"`
	IsAvailable     *bool  `json:"is_available"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type menuItemResponse struct {
	ID              uuid.UUID `json:"id"`
	Category        string    `json:"category"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Price           string    `json:"price"`
	PreparationTime int32     `json:"preparation_time"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	return billing.ToNumeric(d), nil
}

func isMenuCategory(c database.MenuCategory) bool {
	switch c {
	case database.MenuCategoryNyama, database.MenuCategoryWok, database.MenuCategoryVegetarian,
		database.MenuCategorySeafood, database.MenuCategorySweets, database.MenuCategoryDrinks:
		return true
	}
	return false
}

// --- Handlers ---

// List handles GET /menu-items. Customers only see items that can be ordered.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	params := database.ListMenuItemsParams{
		Category:      r.URL.Query().Get("category"),
		AvailableOnly: r.URL.Query().Get("available") == "true",
	}
	if c := middleware.ClaimsFromContext(r.Context()); c != nil && c.Role == enum.RoleCustomer {
		params.AvailableOnly = true
	}

	items, err := h.store.ListMenuItems(r.Context(), params)
	if err != nil {
		h.log.Errorf("MENU", "list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /menu-items.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	category := database.MenuCategory(req.Category)
	if !isMenuCategory(category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	if req.PreparationTime < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preparation_time must be >= 0"})
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	desc := pgtype.Text{}
	if d := strings.TrimSpace(req.Description); d != "" {
		desc = pgtype.Text{String: d, Valid: true}
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Category:        category,
		Name:            name,
		Description:     desc,
		Price:           price,
		PreparationTime: req.PreparationTime,
		IsAvailable:     available,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item already exists"})
			return
		}
		h.log.Errorf("MENU", "create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// SetAvailability handles PATCH /menu-items/{id}/availability, used by the
// kitchen to take sold-out dishes off the menu.
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "menu item")
	if !ok {
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), id, *req.IsAvailable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		h.log.Errorf("MENU", "set availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:              m.ID,
		Category:        string(m.Category),
		Name:            m.Name,
		Description:     textPtr(m.Description),
		Price:           numericToString(m.Price),
		PreparationTime: m.PreparationTime,
		IsAvailable:     m.IsAvailable,
		CreatedAt:       m.CreatedAt,
	}
}
