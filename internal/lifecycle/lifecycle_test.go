package lifecycle

import (
	"testing"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staff(role string) Actor { return Actor{Role: role, StaffID: uuid.New()} }

func dineIn(status database.OrderStatus) OrderState {
	return OrderState{Status: status, OrderType: database.OrderTypeDineIn, PaymentStatus: database.PaymentStatusUnpaid}
}

func TestAttemptOrderTransition_Allowed(t *testing.T) {
	tests := []struct {
		name  string
		order OrderState
		to    database.OrderStatus
		actor Actor
		items database.OrderItemStatus
	}{
		{"waiter confirms", dineIn(database.OrderStatusPending), database.OrderStatusConfirmed, staff(enum.RoleWaitstaff), ""},
		{"kitchen starts pending", dineIn(database.OrderStatusPending), database.OrderStatusPreparing, staff(enum.RoleKitchen), database.OrderItemStatusPreparing},
		{"kitchen starts confirmed", dineIn(database.OrderStatusConfirmed), database.OrderStatusPreparing, staff(enum.RoleKitchen), database.OrderItemStatusPreparing},
		{"kitchen ready", dineIn(database.OrderStatusPreparing), database.OrderStatusReady, staff(enum.RoleKitchen), database.OrderItemStatusReady},
		{"waiter serves", dineIn(database.OrderStatusReady), database.OrderStatusServed, staff(enum.RoleWaitstaff), database.OrderItemStatusServed},
		{"manager cancels", dineIn(database.OrderStatusPreparing), database.OrderStatusCancelled, staff(enum.RoleManager), ""},
		{"admin cancels served", dineIn(database.OrderStatusServed), database.OrderStatusCancelled, staff(enum.RoleAdmin), ""},
		{
			"receptionist completes paid",
			OrderState{Status: database.OrderStatusServed, OrderType: database.OrderTypeDineIn, PaymentStatus: database.PaymentStatusPaid},
			database.OrderStatusCompleted, staff(enum.RoleReceptionist), "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AttemptOrderTransition(tt.order, tt.to, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.order.Status, got.From)
			assert.Equal(t, tt.to, got.To)
			assert.Equal(t, tt.items, got.ItemStatus)
			assert.False(t, got.CreatesDelivery)
		})
	}
}

func TestAttemptOrderTransition_DeliveryCreatesRecord(t *testing.T) {
	o := OrderState{Status: database.OrderStatusReady, OrderType: database.OrderTypeDelivery, PaymentStatus: database.PaymentStatusUnpaid}

	got, err := AttemptOrderTransition(o, database.OrderStatusDelivered, staff(enum.RoleDelivery))
	require.NoError(t, err)
	assert.True(t, got.CreatesDelivery)

	o.OrderType = database.OrderTypeTakeaway
	_, err = AttemptOrderTransition(o, database.OrderStatusDelivered, staff(enum.RoleDelivery))
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestAttemptOrderTransition_Illegal(t *testing.T) {
	tests := []struct {
		name  string
		order OrderState
		to    database.OrderStatus
		actor Actor
	}{
		{"ready back to preparing", dineIn(database.OrderStatusReady), database.OrderStatusPreparing, staff(enum.RoleKitchen)},
		{"skip to ready", dineIn(database.OrderStatusPending), database.OrderStatusReady, staff(enum.RoleKitchen)},
		{"cancel twice", dineIn(database.OrderStatusCancelled), database.OrderStatusCancelled, staff(enum.RoleAdmin)},
		{"reopen completed", dineIn(database.OrderStatusCompleted), database.OrderStatusPending, staff(enum.RoleAdmin)},
		{"complete unpaid", dineIn(database.OrderStatusServed), database.OrderStatusCompleted, staff(enum.RoleManager)},
		{"same status", dineIn(database.OrderStatusPreparing), database.OrderStatusPreparing, staff(enum.RoleKitchen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AttemptOrderTransition(tt.order, tt.to, tt.actor)
			assert.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}

func TestAttemptOrderTransition_WrongActor(t *testing.T) {
	tests := []struct {
		name  string
		order OrderState
		to    database.OrderStatus
		actor Actor
	}{
		{"waiter cannot cook", dineIn(database.OrderStatusConfirmed), database.OrderStatusPreparing, staff(enum.RoleWaitstaff)},
		{"kitchen cannot serve", dineIn(database.OrderStatusReady), database.OrderStatusServed, staff(enum.RoleKitchen)},
		{"waiter cannot cancel", dineIn(database.OrderStatusPending), database.OrderStatusCancelled, staff(enum.RoleWaitstaff)},
		{"customer cannot confirm", dineIn(database.OrderStatusPending), database.OrderStatusConfirmed, Actor{Role: enum.RoleCustomer, CustomerID: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AttemptOrderTransition(tt.order, tt.to, tt.actor)
			assert.ErrorIs(t, err, ErrActorNotAllowed)
		})
	}
}

func TestAttemptOrderTransition_UnknownStatus(t *testing.T) {
	_, err := AttemptOrderTransition(dineIn(database.OrderStatusPending), "teleported", staff(enum.RoleAdmin))
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = AttemptOrderTransition(dineIn("lost"), database.OrderStatusConfirmed, staff(enum.RoleAdmin))
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCheckSettlement(t *testing.T) {
	assert.NoError(t, CheckSettlement(dineIn(database.OrderStatusServed), staff(enum.RoleReceptionist)))
	assert.ErrorIs(t, CheckSettlement(dineIn(database.OrderStatusServed), staff(enum.RoleWaitstaff)), ErrActorNotAllowed)
	assert.ErrorIs(t, CheckSettlement(dineIn(database.OrderStatusCancelled), staff(enum.RoleAdmin)), ErrIllegalTransition)
}

func TestReservationLifecycle_RoomGoesToCleaning(t *testing.T) {
	desk := staff(enum.RoleReceptionist)

	confirm, err := AttemptReservationTransition(database.ReservationStatusPending, database.ReservationStatusConfirmed, desk)
	require.NoError(t, err)
	assert.Empty(t, confirm.Room)

	in, err := AttemptReservationTransition(database.ReservationStatusConfirmed, database.ReservationStatusCheckedIn, desk)
	require.NoError(t, err)
	assert.Equal(t, database.RoomStatusOccupied, in.Room)
	assert.Equal(t, []string{"available"}, in.RoomFrom)

	out, err := AttemptReservationTransition(database.ReservationStatusCheckedIn, database.ReservationStatusCheckedOut, desk)
	require.NoError(t, err)
	assert.Equal(t, database.RoomStatusCleaning, out.Room)
	assert.Equal(t, []string{"occupied"}, out.RoomFrom)
	assert.Equal(t, database.TableStatusCleaning, out.Table)
}

func TestAttemptReservationTransition_Errors(t *testing.T) {
	desk := staff(enum.RoleReceptionist)

	_, err := AttemptReservationTransition(database.ReservationStatusPending, database.ReservationStatusCheckedIn, desk)
	assert.ErrorIs(t, err, ErrIllegalTransition, "must confirm first")

	_, err = AttemptReservationTransition(database.ReservationStatusCheckedIn, database.ReservationStatusCancelled, desk)
	assert.ErrorIs(t, err, ErrIllegalTransition, "cannot cancel a stay in progress")

	_, err = AttemptReservationTransition(database.ReservationStatusCheckedOut, database.ReservationStatusCheckedOut, desk)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = AttemptReservationTransition(database.ReservationStatusPending, database.ReservationStatusConfirmed, staff(enum.RoleKitchen))
	assert.ErrorIs(t, err, ErrActorNotAllowed)

	_, err = AttemptReservationTransition(database.ReservationStatusPending, "archived", desk)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestAttemptReservationTransition_CustomerMayCancel(t *testing.T) {
	customer := Actor{Role: enum.RoleCustomer, CustomerID: uuid.New()}

	_, err := AttemptReservationTransition(database.ReservationStatusConfirmed, database.ReservationStatusCancelled, customer)
	assert.NoError(t, err)

	_, err = AttemptReservationTransition(database.ReservationStatusPending, database.ReservationStatusConfirmed, customer)
	assert.ErrorIs(t, err, ErrActorNotAllowed)
}

func TestAttemptRoomTransition(t *testing.T) {
	cleaner := staff(enum.RoleCleaning)

	assert.NoError(t, AttemptRoomTransition(database.RoomStatusCleaning, database.RoomStatusAvailable, cleaner))
	assert.NoError(t, AttemptRoomTransition(database.RoomStatusAvailable, database.RoomStatusMaintenance, cleaner))

	assert.ErrorIs(t, AttemptRoomTransition(database.RoomStatusOccupied, database.RoomStatusAvailable, cleaner), ErrIllegalTransition)
	assert.ErrorIs(t, AttemptRoomTransition(database.RoomStatusMaintenance, database.RoomStatusAvailable, cleaner), ErrActorNotAllowed)
	assert.NoError(t, AttemptRoomTransition(database.RoomStatusMaintenance, database.RoomStatusAvailable, staff(enum.RoleManager)))
	assert.ErrorIs(t, AttemptRoomTransition("flooded", database.RoomStatusAvailable, cleaner), ErrUnknownStatus)
}

func TestAttemptTableTransition(t *testing.T) {
	assert.NoError(t, AttemptTableTransition(database.TableStatusCleaning, database.TableStatusAvailable, staff(enum.RoleCleaning)))
	assert.NoError(t, AttemptTableTransition(database.TableStatusCleaning, database.TableStatusAvailable, staff(enum.RoleWaitstaff)))
	assert.NoError(t, AttemptTableTransition(database.TableStatusCleaning, database.TableStatusAvailable, staff(enum.RoleManager)))

	assert.ErrorIs(t, AttemptTableTransition(database.TableStatusCleaning, database.TableStatusAvailable, staff(enum.RoleKitchen)), ErrActorNotAllowed)
	assert.ErrorIs(t, AttemptTableTransition(database.TableStatusOccupied, database.TableStatusAvailable, staff(enum.RoleWaitstaff)), ErrIllegalTransition)
	assert.ErrorIs(t, AttemptTableTransition(database.TableStatusAvailable, database.TableStatusAvailable, staff(enum.RoleWaitstaff)), ErrIllegalTransition)
	assert.ErrorIs(t, AttemptTableTransition("wobbly", database.TableStatusAvailable, staff(enum.RoleWaitstaff)), ErrUnknownStatus)
}
