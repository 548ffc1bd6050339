package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrIssueRequired   = invalid("issue is required")
	ErrInvalidPriority = invalid("priority must be low, medium or high")

	ErrInvalidMaintenanceStatus = invalid("status must be reported, in_progress or resolved")
)

var deliveryRoles = []string{enum.RoleDelivery, enum.RoleManager, enum.RoleAdmin}

// HousekeepingStore defines the DB methods needed for room upkeep and
// delivery hand-off.
type HousekeepingStore interface {
	GetRoom(ctx context.Context, id uuid.UUID) (database.Room, error)
	UpdateRoomStatus(ctx context.Context, arg database.UpdateRoomStatusParams) (database.Room, error)
	GetDiningTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	UpdateDiningTableStatus(ctx context.Context, arg database.UpdateDiningTableStatusParams) (database.DiningTable, error)
	CompleteCleaningTasks(ctx context.Context, arg database.CompleteCleaningTasksParams) (int64, error)
	ListCleaningTasks(ctx context.Context, arg database.ListCleaningTasksParams) ([]database.ListCleaningTasksRow, error)
	CreateMaintenanceRequest(ctx context.Context, arg database.CreateMaintenanceRequestParams) (database.MaintenanceRequest, error)
	ListMaintenanceRequests(ctx context.Context, statuses []string) ([]database.ListMaintenanceRequestsRow, error)
	GetDelivery(ctx context.Context, id uuid.UUID) (database.Delivery, error)
	ListDeliveries(ctx context.Context, arg database.ListDeliveriesParams) ([]database.Delivery, error)
	MarkDeliveryDelivered(ctx context.Context, id uuid.UUID) (database.Delivery, error)
}

type NewHousekeepingStore func(db database.DBTX) HousekeepingStore

type ReportMaintenanceRequest struct {
	RoomID   uuid.UUID
	Issue    string
	Priority string
	Notes    string
	Actor    lifecycle.Actor
}

type MaintenanceResult struct {
	Room    database.Room
	Request database.MaintenanceRequest
}

// HousekeepingService covers the cleaning, maintenance and delivery
// dashboards.
type HousekeepingService struct {
	pool     TxBeginner
	newStore NewHousekeepingStore
	notify   Notifier
}

func NewHousekeepingService(pool TxBeginner, newStore NewHousekeepingStore, notify Notifier) *HousekeepingService {
	return &HousekeepingService{pool: pool, newStore: newStore, notify: notify}
}

// MarkRoomClean returns a cleaned (or repaired) room to available.
func (s *HousekeepingService) MarkRoomClean(ctx context.Context, roomID uuid.UUID, actor lifecycle.Actor) (database.Room, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Room{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	room, err := store.GetRoom(ctx, roomID)
	if err != nil {
		return database.Room{}, notFoundOr("get room", err, "room")
	}
	if err := lifecycle.AttemptRoomTransition(room.Status, database.RoomStatusAvailable, actor); err != nil {
		return database.Room{}, err
	}

	updated, err := store.UpdateRoomStatus(ctx, database.UpdateRoomStatusParams{
		ID:           room.ID,
		Status:       database.RoomStatusAvailable,
		FromStatuses: []string{string(room.Status)},
	})
	if err != nil {
		return database.Room{}, conflictOr("update room status", err)
	}

	if room.Status == database.RoomStatusCleaning {
		cleaner := pgtype.UUID{}
		if actor.IsStaff() {
			cleaner = pgtype.UUID{Bytes: actor.StaffID, Valid: true}
		}
		if _, err := store.CompleteCleaningTasks(ctx, database.CompleteCleaningTasksParams{
			RoomID:  room.ID,
			StaffID: cleaner,
		}); err != nil {
			return database.Room{}, persist("complete cleaning tasks", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Room{}, persist("commit tx", err)
	}

	s.emitRoom(ctx, updated)
	return updated, nil
}

// MarkTableClean turns a table around after a sitting so it can be booked
// or seated again.
func (s *HousekeepingService) MarkTableClean(ctx context.Context, tableID uuid.UUID, actor lifecycle.Actor) (database.DiningTable, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.DiningTable{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	table, err := store.GetDiningTable(ctx, tableID)
	if err != nil {
		return database.DiningTable{}, notFoundOr("get table", err, "table")
	}
	if err := lifecycle.AttemptTableTransition(table.Status, database.TableStatusAvailable, actor); err != nil {
		return database.DiningTable{}, err
	}

	updated, err := store.UpdateDiningTableStatus(ctx, database.UpdateDiningTableStatusParams{
		ID:           table.ID,
		Status:       database.TableStatusAvailable,
		FromStatuses: []string{string(table.Status)},
	})
	if err != nil {
		return database.DiningTable{}, conflictOr("update table status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.DiningTable{}, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventTableStatusChanged, updated.ID.String(), map[string]any{
		"id":           updated.ID,
		"table_number": updated.TableNumber,
		"status":       updated.Status,
	})
	return updated, nil
}

// ListCleaningTasks returns the newest cleaning tasks, optionally narrowed
// to some statuses.
func (s *HousekeepingService) ListCleaningTasks(ctx context.Context, statuses []string, limit int32) ([]database.ListCleaningTasksRow, error) {
	var out []database.ListCleaningTasksRow
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListCleaningTasks(ctx, database.ListCleaningTasksParams{Statuses: statuses, Limit: limit})
		if err != nil {
			return persist("list cleaning tasks", err)
		}
		return nil
	})
	return out, err
}

// ListMaintenance returns maintenance requests newest first. No statuses
// means the open ones.
func (s *HousekeepingService) ListMaintenance(ctx context.Context, statuses []string) ([]database.ListMaintenanceRequestsRow, error) {
	if len(statuses) == 0 {
		statuses = []string{"reported", "in_progress"}
	}
	for _, st := range statuses {
		switch st {
		case "reported", "in_progress", "resolved":
		default:
			return nil, ErrInvalidMaintenanceStatus
		}
	}
	var out []database.ListMaintenanceRequestsRow
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListMaintenanceRequests(ctx, statuses)
		if err != nil {
			return persist("list maintenance requests", err)
		}
		return nil
	})
	return out, err
}

// ReportMaintenance records an issue and takes the room out of service. A
// room already under maintenance just gets the extra request.
func (s *HousekeepingService) ReportMaintenance(ctx context.Context, req ReportMaintenanceRequest) (*MaintenanceResult, error) {
	issue := strings.TrimSpace(req.Issue)
	if issue == "" {
		return nil, ErrIssueRequired
	}
	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	switch priority {
	case "":
		priority = "medium"
	case "low", "medium", "high":
	default:
		return nil, ErrInvalidPriority
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	room, err := store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, notFoundOr("get room", err, "room")
	}

	changed := false
	if room.Status != database.RoomStatusMaintenance {
		if err := lifecycle.AttemptRoomTransition(room.Status, database.RoomStatusMaintenance, req.Actor); err != nil {
			return nil, err
		}
		room, err = store.UpdateRoomStatus(ctx, database.UpdateRoomStatusParams{
			ID:           room.ID,
			Status:       database.RoomStatusMaintenance,
			FromStatuses: []string{string(room.Status)},
		})
		if err != nil {
			return nil, conflictOr("update room status", err)
		}
		changed = true
	}

	reportedBy := pgtype.UUID{}
	if req.Actor.IsStaff() {
		reportedBy = pgtype.UUID{Bytes: req.Actor.StaffID, Valid: true}
	}
	mr, err := store.CreateMaintenanceRequest(ctx, database.CreateMaintenanceRequestParams{
		RoomID:     room.ID,
		ReportedBy: reportedBy,
		Issue:      issue,
		Priority:   priority,
		Notes:      optionalText(req.Notes),
	})
	if err != nil {
		return nil, persist("create maintenance request", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persist("commit tx", err)
	}

	if changed {
		s.emitRoom(ctx, room)
	}
	return &MaintenanceResult{Room: room, Request: mr}, nil
}

// ListDeliveries returns deliveries newest first. Delivery staff see only
// their own runs.
func (s *HousekeepingService) ListDeliveries(ctx context.Context, statuses []string, actor lifecycle.Actor) ([]database.Delivery, error) {
	params := database.ListDeliveriesParams{Statuses: statuses}
	if actor.Role == enum.RoleDelivery {
		params.StaffID = pgtype.UUID{Bytes: actor.StaffID, Valid: true}
	}
	var out []database.Delivery
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListDeliveries(ctx, params)
		if err != nil {
			return persist("list deliveries", err)
		}
		return nil
	})
	return out, err
}

// MarkDelivered closes a delivery that is still on the road.
func (s *HousekeepingService) MarkDelivered(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Delivery, error) {
	if !enum.Contains(deliveryRoles, actor.Role) {
		return database.Delivery{}, fmt.Errorf("%w: %s cannot complete deliveries", lifecycle.ErrActorNotAllowed, actor.Role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Delivery{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	d, err := store.GetDelivery(ctx, id)
	if err != nil {
		return database.Delivery{}, notFoundOr("get delivery", err, "delivery")
	}
	if actor.Role == enum.RoleDelivery && d.StaffID.Valid && uuid.UUID(d.StaffID.Bytes) != actor.StaffID {
		return database.Delivery{}, fmt.Errorf("%w: delivery is assigned to another rider", lifecycle.ErrActorNotAllowed)
	}
	if d.Status == database.DeliveryStatusDelivered {
		return database.Delivery{}, fmt.Errorf("%w: delivery already completed", lifecycle.ErrIllegalTransition)
	}

	done, err := store.MarkDeliveryDelivered(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Delivery{}, fmt.Errorf("mark delivered from %s: %w", d.Status, ErrStatusConflict)
		}
		return database.Delivery{}, persist("mark delivered", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Delivery{}, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventDeliveryCompleted, done.ID.String(), map[string]any{
		"id":       done.ID,
		"order_id": done.OrderID,
	})
	return done, nil
}

func (s *HousekeepingService) emitRoom(ctx context.Context, room database.Room) {
	s.notify.emit(ctx, enum.EventRoomStatusChanged, room.ID.String(), map[string]any{
		"id":          room.ID,
		"room_number": room.RoomNumber,
		"status":      room.Status,
	})
}
