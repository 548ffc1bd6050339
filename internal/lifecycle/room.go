package lifecycle

import (
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
)

// Housekeeping moves. Occupied and available rooms change through
// reservations; only cleaning and maintenance are driven from here.
var roomRules = []struct {
	from  []database.RoomStatus
	to    database.RoomStatus
	roles []string
}{
	{
		from:  []database.RoomStatus{database.RoomStatusCleaning},
		to:    database.RoomStatusAvailable,
		roles: []string{enum.RoleCleaning, enum.RoleReceptionist, enum.RoleManager, enum.RoleAdmin},
	},
	{
		from:  []database.RoomStatus{database.RoomStatusMaintenance},
		to:    database.RoomStatusAvailable,
		roles: enum.ManagementRoles,
	},
	{
		from:  []database.RoomStatus{database.RoomStatusAvailable, database.RoomStatusCleaning},
		to:    database.RoomStatusMaintenance,
		roles: []string{enum.RoleCleaning, enum.RoleReceptionist, enum.RoleManager, enum.RoleAdmin},
	},
}

// AttemptRoomTransition validates a housekeeping change of room status.
func AttemptRoomTransition(current, requested database.RoomStatus, actor Actor) error {
	for _, r := range roomRules {
		if r.to != requested || !containsStatus(r.from, current) {
			continue
		}
		if !enum.Contains(r.roles, actor.Role) {
			return fmt.Errorf("%w: %s cannot move a room to %s", ErrActorNotAllowed, actor.Role, requested)
		}
		return nil
	}
	switch current {
	case database.RoomStatusAvailable, database.RoomStatusOccupied,
		database.RoomStatusCleaning, database.RoomStatusMaintenance:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	return fmt.Errorf("%w: room %s -> %s", ErrIllegalTransition, current, requested)
}

// Tables only need turning around between sittings. Reservations and
// walk-ins drive every other table move.
var tableRules = []struct {
	from  []database.TableStatus
	to    database.TableStatus
	roles []string
}{
	{
		from:  []database.TableStatus{database.TableStatusCleaning},
		to:    database.TableStatusAvailable,
		roles: []string{enum.RoleCleaning, enum.RoleWaitstaff, enum.RoleManager, enum.RoleAdmin},
	},
}

// AttemptTableTransition validates a housekeeping change of table status.
func AttemptTableTransition(current, requested database.TableStatus, actor Actor) error {
	for _, r := range tableRules {
		if r.to != requested || !containsStatus(r.from, current) {
			continue
		}
		if !enum.Contains(r.roles, actor.Role) {
			return fmt.Errorf("%w: %s cannot move a table to %s", ErrActorNotAllowed, actor.Role, requested)
		}
		return nil
	}
	switch current {
	case database.TableStatusAvailable, database.TableStatusOccupied,
		database.TableStatusReserved, database.TableStatusCleaning:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, current)
	}
	return fmt.Errorf("%w: table %s -> %s", ErrIllegalTransition, current, requested)
}
