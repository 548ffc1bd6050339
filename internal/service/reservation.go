package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidReservationType = invalid("reservation_type must be room or table")
	ErrReservationTarget      = invalid("room reservations need room_id only; table reservations need table_id only")
	ErrInvalidDate            = invalid("dates must be YYYY-MM-DD")
	ErrCheckInPast            = invalid("check_in cannot be in the past")
	ErrCheckOutBeforeCheckIn  = invalid("check_out must be after check_in")
	ErrTimeSlotRequired       = invalid("time_slot is required for table reservations")
	ErrInvalidGuests          = invalid("guests must be >= 1")
	ErrTooManyGuests          = invalid("guests exceed table capacity")
	ErrCustomerRequired       = invalid("customer_id is required")
	ErrRoomNotFound           = invalid("room not found")
	ErrTableNotFound          = invalid("table not found")

	ErrRoomUnavailable  = fmt.Errorf("room %w", ErrNotReady)
	ErrTableUnavailable = fmt.Errorf("table %w", ErrNotReady)
)

// hotelZone is the local calendar reservations are dated in.
var hotelZone = time.FixedZone("EAT", 3*3600)

// ReservationStore defines the DB methods needed by the reservation service.
type ReservationStore interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	GetRoom(ctx context.Context, id uuid.UUID) (database.Room, error)
	GetDiningTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	CreateReservation(ctx context.Context, arg database.CreateReservationParams) (database.Reservation, error)
	GetReservation(ctx context.Context, id uuid.UUID) (database.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id uuid.UUID) (database.Reservation, error)
	ListReservations(ctx context.Context, arg database.ListReservationsParams) ([]database.Reservation, error)
	UpdateReservationStatus(ctx context.Context, arg database.UpdateReservationStatusParams) (database.Reservation, error)
	UpdateRoomStatus(ctx context.Context, arg database.UpdateRoomStatusParams) (database.Room, error)
	UpdateDiningTableStatus(ctx context.Context, arg database.UpdateDiningTableStatusParams) (database.DiningTable, error)
	CreateCleaningTask(ctx context.Context, arg database.CreateCleaningTaskParams) (database.CleaningTask, error)
}

type NewReservationStore func(db database.DBTX) ReservationStore

type CreateReservationRequest struct {
	ReservationType string
	CustomerID      string
	RoomID          string
	TableID         string
	CheckIn         string
	CheckOut        string
	TimeSlot        string
	Guests          int32
	PaymentMethod   string
	TransactionCode string
	SpecialRequests string
	Actor           lifecycle.Actor
}

type ReservationFilter struct {
	Statuses        []string
	ReservationType string
	Limit           int32
	Offset          int32
}

// ReservationService books rooms and tables and moves reservations through
// check-in and check-out, keeping the room or table status in step.
type ReservationService struct {
	pool     TxBeginner
	newStore NewReservationStore
	tableFee decimal.Decimal
	notify   Notifier
	now      func() time.Time
}

func NewReservationService(pool TxBeginner, newStore NewReservationStore, tableFee decimal.Decimal, notify Notifier) *ReservationService {
	return &ReservationService{
		pool:     pool,
		newStore: newStore,
		tableFee: tableFee,
		notify:   notify,
		now:      time.Now,
	}
}

// Create validates and inserts a pending reservation. The prepayment is the
// room price for rooms and the flat table fee for tables.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (database.Reservation, error) {
	params, err := s.validateCreate(req)
	if err != nil {
		return database.Reservation{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Reservation{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetCustomer(ctx, params.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Reservation{}, ErrInvalidCustomerID
		}
		return database.Reservation{}, persist("get customer", err)
	}

	switch params.ReservationType {
	case database.ReservationTypeRoom:
		room, err := store.GetRoom(ctx, params.RoomID.Bytes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Reservation{}, ErrRoomNotFound
			}
			return database.Reservation{}, persist("get room", err)
		}
		if room.Status == database.RoomStatusMaintenance {
			return database.Reservation{}, ErrRoomUnavailable
		}
		params.PrepayAmount = room.Price
	case database.ReservationTypeTable:
		table, err := store.GetDiningTable(ctx, params.TableID.Bytes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Reservation{}, ErrTableNotFound
			}
			return database.Reservation{}, persist("get table", err)
		}
		if params.Guests > table.Capacity {
			return database.Reservation{}, fmt.Errorf("%w (%d seats)", ErrTooManyGuests, table.Capacity)
		}
		params.PrepayAmount = billing.ToNumeric(s.tableFee)
	}

	res, err := store.CreateReservation(ctx, params)
	if err != nil {
		return database.Reservation{}, persist("create reservation", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Reservation{}, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventReservationCreated, res.ID.String(), map[string]any{
		"id":               res.ID,
		"reservation_type": res.ReservationType,
		"guests":           res.Guests,
		"prepay_amount":    billing.FromNumeric(res.PrepayAmount).StringFixed(2),
	})
	return res, nil
}

func (s *ReservationService) validateCreate(req CreateReservationRequest) (database.CreateReservationParams, error) {
	var p database.CreateReservationParams

	switch t := database.ReservationType(req.ReservationType); t {
	case database.ReservationTypeRoom, database.ReservationTypeTable:
		p.ReservationType = t
	default:
		return p, ErrInvalidReservationType
	}

	// Customers book for themselves; the front desk books for a customer.
	if !req.Actor.IsStaff() && req.Actor.CustomerID != uuid.Nil {
		p.CustomerID = req.Actor.CustomerID
	} else {
		if req.CustomerID == "" {
			return p, ErrCustomerRequired
		}
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return p, ErrInvalidCustomerID
		}
		p.CustomerID = id
	}

	if req.Guests < 1 {
		return p, ErrInvalidGuests
	}
	p.Guests = req.Guests

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return p, ErrInvalidDate
	}
	today, _ := time.Parse(dateLayout, s.now().In(hotelZone).Format(dateLayout))
	if checkIn.Before(today) {
		return p, ErrCheckInPast
	}
	p.CheckIn = pgtype.Date{Time: checkIn, Valid: true}

	if p.ReservationType == database.ReservationTypeRoom {
		if req.RoomID == "" || req.TableID != "" {
			return p, ErrReservationTarget
		}
		roomID, err := optionalUUID(req.RoomID, ErrInvalidRoomID)
		if err != nil {
			return p, err
		}
		p.RoomID = roomID
		checkOut, err := time.Parse(dateLayout, req.CheckOut)
		if err != nil {
			return p, ErrInvalidDate
		}
		if !checkOut.After(checkIn) {
			return p, ErrCheckOutBeforeCheckIn
		}
		p.CheckOut = pgtype.Date{Time: checkOut, Valid: true}
	} else {
		if req.TableID == "" || req.RoomID != "" {
			return p, ErrReservationTarget
		}
		tableID, err := optionalUUID(req.TableID, ErrInvalidTableID)
		if err != nil {
			return p, err
		}
		p.TableID = tableID
		if strings.TrimSpace(req.TimeSlot) == "" {
			return p, ErrTimeSlotRequired
		}
		p.TimeSlot = optionalText(req.TimeSlot)
	}

	method, err := nullPaymentMethod(req.PaymentMethod)
	if err != nil {
		return p, err
	}
	p.PaymentMethod = method
	p.TransactionCode = optionalText(req.TransactionCode)
	p.SpecialRequests = optionalText(req.SpecialRequests)
	return p, nil
}

// Get returns one reservation. Customers only see their own.
func (s *ReservationService) Get(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	var res database.Reservation
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		res, err = s.newStore(db).GetReservation(ctx, id)
		if err != nil {
			return notFoundOr("get reservation", err, "reservation")
		}
		if !canSeeReservation(res, actor) {
			return fmt.Errorf("reservation: %w", ErrNotFound)
		}
		return nil
	})
	return res, err
}

// List returns reservations newest first. Customers are limited to their own.
func (s *ReservationService) List(ctx context.Context, f ReservationFilter, actor lifecycle.Actor) ([]database.Reservation, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	params := database.ListReservationsParams{
		Statuses:        f.Statuses,
		ReservationType: f.ReservationType,
		Limit:           f.Limit,
		Offset:          f.Offset,
	}
	if !actor.IsStaff() {
		params.CustomerID = pgtype.UUID{Bytes: actor.CustomerID, Valid: true}
	}
	var out []database.Reservation
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		out, err = s.newStore(db).ListReservations(ctx, params)
		if err != nil {
			return persist("list reservations", err)
		}
		return nil
	})
	return out, err
}

func (s *ReservationService) Confirm(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return s.transition(ctx, id, database.ReservationStatusConfirmed, actor)
}

// CheckIn marks the guest arrived and the room or table occupied.
func (s *ReservationService) CheckIn(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return s.transition(ctx, id, database.ReservationStatusCheckedIn, actor)
}

// CheckOut closes the stay and sends the room or table to cleaning.
func (s *ReservationService) CheckOut(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return s.transition(ctx, id, database.ReservationStatusCheckedOut, actor)
}

func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Reservation, error) {
	return s.transition(ctx, id, database.ReservationStatusCancelled, actor)
}

func (s *ReservationService) transition(ctx context.Context, id uuid.UUID, to database.ReservationStatus, actor lifecycle.Actor) (database.Reservation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Reservation{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetReservationForUpdate(ctx, id)
	if err != nil {
		return database.Reservation{}, notFoundOr("lock reservation", err, "reservation")
	}
	if !canSeeReservation(current, actor) {
		return database.Reservation{}, fmt.Errorf("reservation: %w", ErrNotFound)
	}

	tr, err := lifecycle.AttemptReservationTransition(current.Status, to, actor)
	if err != nil {
		return database.Reservation{}, err
	}

	updated, err := store.UpdateReservationStatus(ctx, database.UpdateReservationStatusParams{
		ID:             current.ID,
		Status:         tr.To,
		ExpectedStatus: tr.From,
	})
	if err != nil {
		return database.Reservation{}, conflictOr("update reservation status", err)
	}

	var room *database.Room
	switch {
	case current.ReservationType == database.ReservationTypeRoom && tr.Room != "" && current.RoomID.Valid:
		r, err := store.UpdateRoomStatus(ctx, database.UpdateRoomStatusParams{
			ID:           current.RoomID.Bytes,
			Status:       tr.Room,
			FromStatuses: tr.RoomFrom,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Reservation{}, unavailable(ctx, ErrRoomUnavailable, func(ctx context.Context) (string, error) {
					r, err := store.GetRoom(ctx, current.RoomID.Bytes)
					return string(r.Status), err
				})
			}
			return database.Reservation{}, persist("update room status", err)
		}
		room = &r
		if r.Status == database.RoomStatusCleaning {
			requestedBy := pgtype.UUID{}
			if actor.IsStaff() {
				requestedBy = pgtype.UUID{Bytes: actor.StaffID, Valid: true}
			}
			if _, err := store.CreateCleaningTask(ctx, database.CreateCleaningTaskParams{
				RoomID:      r.ID,
				TaskType:    "checkout",
				RequestedBy: requestedBy,
			}); err != nil {
				return database.Reservation{}, persist("create cleaning task", err)
			}
		}
	case current.ReservationType == database.ReservationTypeTable && tr.Table != "" && current.TableID.Valid:
		if _, err := store.UpdateDiningTableStatus(ctx, database.UpdateDiningTableStatusParams{
			ID:           current.TableID.Bytes,
			Status:       tr.Table,
			FromStatuses: tr.TableFrom,
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Reservation{}, unavailable(ctx, ErrTableUnavailable, func(ctx context.Context) (string, error) {
					t, err := store.GetDiningTable(ctx, current.TableID.Bytes)
					return string(t.Status), err
				})
			}
			return database.Reservation{}, persist("update table status", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Reservation{}, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventReservationStatusChanged, updated.ID.String(), map[string]any{
		"id":   updated.ID,
		"from": tr.From,
		"to":   tr.To,
	})
	if room != nil {
		s.notify.emit(ctx, enum.EventRoomStatusChanged, room.ID.String(), map[string]any{
			"id":          room.ID,
			"room_number": room.RoomNumber,
			"status":      room.Status,
		})
	}
	return updated, nil
}

// unavailable names the status that blocked a room or table move, so the
// desk sees "table not ready for this move: currently cleaning".
func unavailable(ctx context.Context, base error, status func(context.Context) (string, error)) error {
	st, err := status(ctx)
	if err != nil {
		return base
	}
	return fmt.Errorf("%w: currently %s", base, st)
}

func canSeeReservation(r database.Reservation, actor lifecycle.Actor) bool {
	return actor.IsStaff() || r.CustomerID == actor.CustomerID
}
