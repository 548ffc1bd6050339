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

// RoomStore defines the read queries behind the room and table boards.
type RoomStore interface {
	ListRooms(ctx context.Context, status string) ([]database.Room, error)
	ListDiningTables(ctx context.Context, status string) ([]database.DiningTable, error)
}

// HousekeepingServicer is satisfied by *service.HousekeepingService.
type HousekeepingServicer interface {
	MarkRoomClean(ctx context.Context, roomID uuid.UUID, actor lifecycle.Actor) (database.Room, error)
	MarkTableClean(ctx context.Context, tableID uuid.UUID, actor lifecycle.Actor) (database.DiningTable, error)
	ReportMaintenance(ctx context.Context, req service.ReportMaintenanceRequest) (*service.MaintenanceResult, error)
	ListMaintenance(ctx context.Context, statuses []string) ([]database.ListMaintenanceRequestsRow, error)
	ListCleaningTasks(ctx context.Context, statuses []string, limit int32) ([]database.ListCleaningTasksRow, error)
	ListDeliveries(ctx context.Context, statuses []string, actor lifecycle.Actor) ([]database.Delivery, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Delivery, error)
}

// RoomHandler serves the room and table boards and the housekeeping actions.
type RoomHandler struct {
	store RoomStore
	svc   HousekeepingServicer
	log   *logger.Logger
}

func NewRoomHandler(store RoomStore, svc HousekeepingServicer, log *logger.Logger) *RoomHandler {
	return &RoomHandler{store: store, svc: svc, log: log}
}

// RegisterRoutes registers the board listings.
func (h *RoomHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms", h.ListRooms)
	r.Get("/tables", h.ListTables)
}

// RegisterHousekeepingRoutes registers the staff-only room and table
// actions and the cleaning dashboard lists.
func (h *RoomHandler) RegisterHousekeepingRoutes(r chi.Router) {
	r.Post("/rooms/{id}/clean", h.MarkClean)
	r.Post("/rooms/{id}/maintenance", h.ReportMaintenance)
	r.Post("/tables/{id}/clean", h.MarkTableClean)
	r.Get("/cleaning-tasks", h.ListCleaningTasks)
	r.Get("/maintenance-requests", h.ListMaintenance)
}

// cleaningTaskLimit is how many tasks the cleaning board shows by default.
const cleaningTaskLimit = 20

// --- Request / Response types ---

type maintenanceRequest struct {
	Issue    string `json:"issue"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
}

type roomResponse struct {
	ID         uuid.UUID `json:"id"`
	ClassType  string    `json:"class_type"`
	Name       string    `json:"name"`
	RoomNumber string    `json:"room_number"`
	Price      string    `json:"price"`
	Status     string    `json:"status"`
	Floor      int32     `json:"floor"`
}

type tableResponse struct {
	ID          uuid.UUID `json:"id"`
	ClassType   string    `json:"class_type"`
	TableNumber int32     `json:"table_number"`
	Capacity    int32     `json:"capacity"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
}

type maintenanceResponse struct {
	Room    roomResponse              `json:"room"`
	Request maintenanceRequestPayload `json:"request"`
}

type maintenanceRequestPayload struct {
	ID         uuid.UUID  `json:"id"`
	RoomID     uuid.UUID  `json:"room_id"`
	RoomNumber string     `json:"room_number,omitempty"`
	ReportedBy *string    `json:"reported_by"`
	Issue      string     `json:"issue"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	Notes      *string    `json:"notes"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type cleaningTaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	RoomID        uuid.UUID  `json:"room_id"`
	RoomNumber    string     `json:"room_number"`
	RoomClassType string     `json:"room_class_type"`
	StaffID       *string    `json:"staff_id"`
	TaskType      string     `json:"task_type"`
	Status        string     `json:"status"`
	RequestedBy   *string    `json:"requested_by"`
	CompletedAt   *time.Time `json:"completed_at"`
	Notes         *string    `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
}

// --- Handlers ---

// ListRooms handles GET /rooms?status=.
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.store.ListRooms(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.log.Errorf("ROOMS", "list rooms: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]roomResponse, len(rooms))
	for i, rm := range rooms {
		resp[i] = toRoomResponse(rm)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListTables handles GET /tables?status=.
func (h *RoomHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListDiningTables(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.log.Errorf("ROOMS", "list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkClean handles POST /rooms/{id}/clean.
func (h *RoomHandler) MarkClean(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "room")
	if !ok {
		return
	}

	room, err := h.svc.MarkRoomClean(r.Context(), id, act)
	if err != nil {
		writeServiceError(w, h.log, "mark room clean", err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// ReportMaintenance handles POST /rooms/{id}/maintenance.
func (h *RoomHandler) ReportMaintenance(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "room")
	if !ok {
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := h.svc.ReportMaintenance(r.Context(), service.ReportMaintenanceRequest{
		RoomID:   id,
		Issue:    req.Issue,
		Priority: req.Priority,
		Notes:    req.Notes,
		Actor:    act,
	})
	if err != nil {
		writeServiceError(w, h.log, "report maintenance", err)
		return
	}

	writeJSON(w, http.StatusCreated, maintenanceResponse{
		Room:    toRoomResponse(res.Room),
		Request: toMaintenancePayload(res.Request, ""),
	})
}

// MarkTableClean handles POST /tables/{id}/clean.
func (h *RoomHandler) MarkTableClean(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := urlID(w, r, "table")
	if !ok {
		return
	}

	table, err := h.svc.MarkTableClean(r.Context(), id, act)
	if err != nil {
		writeServiceError(w, h.log, "mark table clean", err)
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// ListCleaningTasks handles GET /cleaning-tasks?status=&limit=.
func (h *RoomHandler) ListCleaningTasks(w http.ResponseWriter, r *http.Request) {
	limit := cleaningTaskLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	tasks, err := h.svc.ListCleaningTasks(r.Context(), splitList(r.URL.Query().Get("status")), int32(limit))
	if err != nil {
		writeServiceError(w, h.log, "list cleaning tasks", err)
		return
	}
	resp := make([]cleaningTaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = cleaningTaskResponse{
			ID:            t.ID,
			RoomID:        t.RoomID,
			RoomNumber:    t.RoomNumber,
			RoomClassType: t.RoomClassType,
			StaffID:       uuidPtr(t.StaffID),
			TaskType:      t.TaskType,
			Status:        t.Status,
			RequestedBy:   uuidPtr(t.RequestedBy),
			CompletedAt:   timePtr(t.CompletedAt),
			Notes:         textPtr(t.Notes),
			CreatedAt:     t.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMaintenance handles GET /maintenance-requests?status=. Without a
// status filter only reported and in-progress requests are listed.
func (h *RoomHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListMaintenance(r.Context(), splitList(r.URL.Query().Get("status")))
	if err != nil {
		writeServiceError(w, h.log, "list maintenance requests", err)
		return
	}
	resp := make([]maintenanceRequestPayload, len(list))
	for i, m := range list {
		resp[i] = toMaintenancePayload(m.MaintenanceRequest, m.RoomNumber)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toMaintenancePayload(mr database.MaintenanceRequest, roomNumber string) maintenanceRequestPayload {
	return maintenanceRequestPayload{
		ID:         mr.ID,
		RoomID:     mr.RoomID,
		RoomNumber: roomNumber,
		ReportedBy: uuidPtr(mr.ReportedBy),
		Issue:      mr.Issue,
		Priority:   mr.Priority,
		Status:     mr.Status,
		Notes:      textPtr(mr.Notes),
		ResolvedAt: timePtr(mr.ResolvedAt),
		CreatedAt:  mr.CreatedAt,
	}
}

func toTableResponse(t database.DiningTable) tableResponse {
	return tableResponse{
		ID:          t.ID,
		ClassType:   t.ClassType,
		TableNumber: t.TableNumber,
		Capacity:    t.Capacity,
		Status:      string(t.Status),
		Location:    t.Location,
	}
}

func toRoomResponse(r database.Room) roomResponse {
	return roomResponse{
		ID:         r.ID,
		ClassType:  r.ClassType,
		Name:       r.Name,
		RoomNumber: r.RoomNumber,
		Price:      numericToString(r.Price),
		Status:     string(r.Status),
		Floor:      r.Floor,
	}
}
