package handler

import (
	"net/http"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DeliveryHandler serves the delivery dashboard.
type DeliveryHandler struct {
	svc HousekeepingServicer
	log *logger.Logger
}

func NewDeliveryHandler(svc HousekeepingServicer, log *logger.Logger) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, log: log}
}

// RegisterRoutes registers delivery endpoints. Expected to be mounted at
// /deliveries.
func (h *DeliveryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/{id}/delivered", h.MarkDelivered)
}

type deliveryResponse struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	StaffID         *string    `json:"staff_id"`
	Status          string     `json:"status"`
	DeliveryAddress *string    `json:"delivery_address"`
	CustomerPhone   *string    `json:"customer_phone"`
	PickupTime      *time.Time `json:"pickup_time"`
	DeliveryTime    *time.Time `json:"delivery_time"`
	Notes           *string    `json:"notes"`
}

// List handles GET /deliveries?status=picked_up,in_transit.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}

	list, err := h.svc.ListDeliveries(r.Context(), splitList(r.URL.Query().Get("status")), act)
	if err != nil {
		writeServiceError(w, h.log, "list deliveries", err)
		return
	}

	resp := make([]deliveryResponse, len(list))
	for i, d := range list {
		resp[i] = toDeliveryResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkDelivered handles POST /deliveries/{id}/delivered.
func (h *DeliveryHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "delivery")
	if !ok {
		return
	}

	d, err := h.svc.MarkDelivered(r.Context(), id, act)
	if err != nil {
		writeServiceError(w, h.log, "mark delivered", err)
		return
	}
	writeJSON(w, http.StatusOK, toDeliveryResponse(d))
}

func toDeliveryResponse(d database.Delivery) deliveryResponse {
	return deliveryResponse{
		ID:              d.ID,
		OrderID:         d.OrderID,
		StaffID:         uuidPtr(d.StaffID),
		Status:          string(d.Status),
		DeliveryAddress: textPtr(d.DeliveryAddress),
		CustomerPhone:   textPtr(d.CustomerPhone),
		PickupTime:      timePtr(d.PickupTime),
		DeliveryTime:    timePtr(d.DeliveryTime),
		Notes:           textPtr(d.Notes),
	}
}
