package lifecycle

import (
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
)

var frontDesk = []string{enum.RoleReceptionist, enum.RoleManager, enum.RoleAdmin}

// ReservationTransition carries the room or table move that must be written
// in the same transaction as the reservation status.
type ReservationTransition struct {
	From database.ReservationStatus
	To   database.ReservationStatus

	// Room is empty when the reserved room keeps its status.
	Room     database.RoomStatus
	RoomFrom []string

	Table     database.TableStatus
	TableFrom []string
}

type reservationRule struct {
	from  []database.ReservationStatus
	to    database.ReservationStatus
	roles []string

	room      database.RoomStatus
	roomFrom  []string
	table     database.TableStatus
	tableFrom []string
}

var reservationRules = []reservationRule{
	{
		from:  []database.ReservationStatus{database.ReservationStatusPending},
		to:    database.ReservationStatusConfirmed,
		roles: frontDesk,
	},
	{
		from:      []database.ReservationStatus{database.ReservationStatusConfirmed},
		to:        database.ReservationStatusCheckedIn,
		roles:     frontDesk,
		room:      database.RoomStatusOccupied,
		roomFrom:  []string{string(database.RoomStatusAvailable)},
		table:     database.TableStatusOccupied,
		tableFrom: []string{string(database.TableStatusAvailable), string(database.TableStatusReserved)},
	},
	{
		from:      []database.ReservationStatus{database.ReservationStatusCheckedIn},
		to:        database.ReservationStatusCheckedOut,
		roles:     frontDesk,
		room:      database.RoomStatusCleaning,
		roomFrom:  []string{string(database.RoomStatusOccupied)},
		table:     database.TableStatusCleaning,
		tableFrom: []string{string(database.TableStatusOccupied)},
	},
	{
		from:  []database.ReservationStatus{database.ReservationStatusPending, database.ReservationStatusConfirmed},
		to:    database.ReservationStatusCancelled,
		roles: append([]string{enum.RoleCustomer}, frontDesk...),
	},
}

func isKnownReservationStatus(s database.ReservationStatus) bool {
	switch s {
	case database.ReservationStatusPending, database.ReservationStatusConfirmed,
		database.ReservationStatusCheckedIn, database.ReservationStatusCheckedOut,
		database.ReservationStatusCancelled:
		return true
	}
	return false
}

// AttemptReservationTransition decides whether actor may move a reservation
// from current to requested.
func AttemptReservationTransition(current, requested database.ReservationStatus, actor Actor) (ReservationTransition, error) {
	if !isKnownReservationStatus(requested) {
		return ReservationTransition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}
	if !isKnownReservationStatus(current) {
		return ReservationTransition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	if current.IsTerminal() {
		return ReservationTransition{}, fmt.Errorf("%w: reservation is already %s", ErrIllegalTransition, current)
	}

	for _, r := range reservationRules {
		if r.to != requested || !containsStatus(r.from, current) {
			continue
		}
		if !containsStatus(r.roles, actor.Role) {
			return ReservationTransition{}, fmt.Errorf("%w: %s cannot move a reservation to %s", ErrActorNotAllowed, actor.Role, requested)
		}
		return ReservationTransition{
			From:      current,
			To:        requested,
			Room:      r.room,
			RoomFrom:  r.roomFrom,
			Table:     r.table,
			TableFrom: r.tableFrom,
		}, nil
	}
	return ReservationTransition{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, requested)
}
