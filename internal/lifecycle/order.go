// Package lifecycle holds the status state machines for orders, reservations
// and rooms. Every transition a dashboard can request is decided here, from
// the current row state and the acting staff role; callers then perform the
// write as a compare-and-set on the status they read.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/google/uuid"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrActorNotAllowed   = errors.New("role may not perform this transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

// Actor is the authenticated principal requesting a transition.
type Actor struct {
	Role       string
	StaffID    uuid.UUID
	CustomerID uuid.UUID
}

// IsStaff reports whether the actor signed in as an employee.
func (a Actor) IsStaff() bool { return a.StaffID != uuid.Nil }

// OrderState is the slice of an order the state machine looks at.
type OrderState struct {
	Status        database.OrderStatus
	OrderType     database.OrderType
	PaymentStatus database.PaymentStatus
}

// OrderTransition describes an allowed move and the writes that go with it.
type OrderTransition struct {
	From database.OrderStatus
	To   database.OrderStatus
	// ItemStatus is non-empty when every line item follows the order.
	ItemStatus      database.OrderItemStatus
	CreatesDelivery bool
}

type orderRule struct {
	from       []database.OrderStatus
	to         database.OrderStatus
	roles      []string
	itemStatus database.OrderItemStatus
	delivery   bool
	guard      func(OrderState) error
}

var nonTerminalOrder = []database.OrderStatus{
	database.OrderStatusPending,
	database.OrderStatusConfirmed,
	database.OrderStatusPreparing,
	database.OrderStatusReady,
	database.OrderStatusServed,
	database.OrderStatusDelivered,
}

var orderRules = []orderRule{
	{
		from:  []database.OrderStatus{database.OrderStatusPending},
		to:    database.OrderStatusConfirmed,
		roles: []string{enum.RoleWaitstaff, enum.RoleReceptionist, enum.RoleManager, enum.RoleAdmin},
	},
	{
		from:       []database.OrderStatus{database.OrderStatusPending, database.OrderStatusConfirmed},
		to:         database.OrderStatusPreparing,
		roles:      []string{enum.RoleKitchen},
		itemStatus: database.OrderItemStatusPreparing,
	},
	{
		from:       []database.OrderStatus{database.OrderStatusPreparing},
		to:         database.OrderStatusReady,
		roles:      []string{enum.RoleKitchen},
		itemStatus: database.OrderItemStatusReady,
	},
	{
		from:       []database.OrderStatus{database.OrderStatusReady},
		to:         database.OrderStatusServed,
		roles:      []string{enum.RoleWaitstaff},
		itemStatus: database.OrderItemStatusServed,
	},
	{
		from:     []database.OrderStatus{database.OrderStatusReady},
		to:       database.OrderStatusDelivered,
		roles:    []string{enum.RoleDelivery},
		delivery: true,
		guard: func(o OrderState) error {
			if o.OrderType != database.OrderTypeDelivery {
				return fmt.Errorf("%w: only delivery orders can be delivered", ErrIllegalTransition)
			}
			return nil
		},
	},
	// Settlement marks paid and completed together, so through the API this
	// only closes rows that are paid but still open, such as imported bills
	// or a hand-corrected payment.
	{
		from:  nonTerminalOrder,
		to:    database.OrderStatusCompleted,
		roles: enum.BillingRoles,
		guard: func(o OrderState) error {
			if o.PaymentStatus != database.PaymentStatusPaid {
				return fmt.Errorf("%w: order must be paid before completion", ErrIllegalTransition)
			}
			return nil
		},
	},
	{
		from:  nonTerminalOrder,
		to:    database.OrderStatusCancelled,
		roles: enum.ManagementRoles,
	},
}

// IsKnownOrderStatus reports whether s is one of the order statuses.
func IsKnownOrderStatus(s database.OrderStatus) bool {
	return s.IsTerminal() || containsStatus(nonTerminalOrder, s)
}

// AttemptOrderTransition decides whether actor may move the order to
// requested. Reachability is checked before the actor's role, so a move that
// is impossible for everyone is ErrIllegalTransition rather than
// ErrActorNotAllowed.
func AttemptOrderTransition(o OrderState, requested database.OrderStatus, actor Actor) (OrderTransition, error) {
	if !IsKnownOrderStatus(requested) {
		return OrderTransition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}
	if !IsKnownOrderStatus(o.Status) {
		return OrderTransition{}, fmt.Errorf("%w: %q", ErrUnknownStatus, o.Status)
	}
	if o.Status.IsTerminal() {
		return OrderTransition{}, fmt.Errorf("%w: order is already %s", ErrIllegalTransition, o.Status)
	}

	rule, ok := findOrderRule(o.Status, requested)
	if !ok {
		return OrderTransition{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, requested)
	}
	if rule.guard != nil {
		if err := rule.guard(o); err != nil {
			return OrderTransition{}, err
		}
	}
	if !enum.Contains(rule.roles, actor.Role) {
		return OrderTransition{}, fmt.Errorf("%w: %s cannot move an order to %s", ErrActorNotAllowed, actor.Role, requested)
	}

	return OrderTransition{
		From:            o.Status,
		To:              requested,
		ItemStatus:      rule.itemStatus,
		CreatesDelivery: rule.delivery,
	}, nil
}

// CheckSettlement validates that actor may take payment for the order and
// close it. Payment status itself is the caller's concern.
func CheckSettlement(o OrderState, actor Actor) error {
	if !IsKnownOrderStatus(o.Status) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, o.Status)
	}
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrIllegalTransition, o.Status)
	}
	if !enum.Contains(enum.BillingRoles, actor.Role) {
		return fmt.Errorf("%w: %s cannot settle orders", ErrActorNotAllowed, actor.Role)
	}
	return nil
}

func findOrderRule(from, to database.OrderStatus) (orderRule, bool) {
	for _, r := range orderRules {
		if r.to == to && containsStatus(r.from, from) {
			return r, true
		}
	}
	return orderRule{}, false
}

func containsStatus[T comparable](list []T, s T) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
