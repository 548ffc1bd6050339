package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const maxOrderNumberRetries = 3

const orderNumberConstraint = "orders_order_number_key"

// Errors returned by the order service.
var (
	ErrEmptyItems          = invalid("items are required")
	ErrInvalidOrderType    = invalid("invalid order_type")
	ErrInvalidQuantity     = invalid("quantity must be > 0")
	ErrInvalidMenuItemID   = invalid("invalid menu_item_id")
	ErrMenuItemNotFound    = invalid("menu item not found")
	ErrMenuItemUnavailable = invalid("menu item is not available")
	ErrInvalidCustomerID   = invalid("invalid customer_id")
	ErrInvalidTableID      = invalid("invalid table_id")
	ErrInvalidRoomID       = invalid("invalid room_id")
	ErrRoomRequired        = invalid("room_id is required for room service orders")
)

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderItemsStatus(ctx context.Context, arg database.UpdateOrderItemsStatusParams) error
	CreateDelivery(ctx context.Context, arg database.CreateDeliveryParams) (database.Delivery, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order. Items may repeat a
// menu item; repeats are merged into one line.
type CreateOrderRequest struct {
	OrderType  string
	CustomerID string
	TableID    string
	RoomID     string
	Notes      string
	Items      []CreateOrderItemRequest
	Actor      lifecycle.Actor
}

type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
}

// OrderResult is a created order with its lines.
type OrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderDetail is an order with its lines and their menu item names.
type OrderDetail struct {
	Order database.Order
	Items []database.ListOrderItemsByOrderRow
}

// OrderFilter narrows ListOrders. Empty fields match everything.
type OrderFilter struct {
	Statuses      []string
	OrderTypes    []string
	PaymentStatus string
	Limit         int32
	Offset        int32
}

// UpdateStatusRequest asks for one order status transition.
type UpdateStatusRequest struct {
	OrderID uuid.UUID
	Status  database.OrderStatus
	Actor   lifecycle.Actor
	// DeliveryAddress is recorded on the delivery created by a move to
	// delivered.
	DeliveryAddress string
}

// OrderService handles order creation and status transitions.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	rates    billing.Rates
	notify   Notifier
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, rates billing.Rates, notify Notifier) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, rates: rates, notify: notify}
}

// CreateOrder prices the items from the menu, computes totals and creates the
// order atomically. It retries up to maxOrderNumberRetries times when a
// concurrent transaction took the same order number.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	orderType, err := validateOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		if _, err := uuid.Parse(item.MenuItemID); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
	}
	if orderType == database.OrderTypeRoomService && req.RoomID == "" {
		return nil, ErrRoomRequired
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, orderType)
		if err == nil {
			s.notify.emit(ctx, enum.EventOrderCreated, result.Order.ID.String(), map[string]any{
				"id":           result.Order.ID,
				"order_number": result.Order.OrderNumber,
				"order_type":   result.Order.OrderType,
				"total":        billing.FromNumeric(result.Order.Total).StringFixed(2),
			})
			return result, nil
		}
		if isUniqueViolation(err, orderNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, persist("create order", lastErr)
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, orderType database.OrderType) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Resolve references ---
	customerID, err := s.resolveCustomer(ctx, store, req)
	if err != nil {
		return nil, err
	}
	tableID, err := optionalUUID(req.TableID, ErrInvalidTableID)
	if err != nil {
		return nil, err
	}
	roomID, err := optionalUUID(req.RoomID, ErrInvalidRoomID)
	if err != nil {
		return nil, err
	}

	// --- Price items from the menu; the cart merges repeats ---
	cart := billing.NewCart()
	notes := make(map[uuid.UUID]string)
	for i, item := range req.Items {
		id := uuid.MustParse(item.MenuItemID)
		menuItem, err := store.GetMenuItem(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, persist("get menu item", err)
		}
		if !menuItem.IsAvailable {
			return nil, fmt.Errorf("item[%d] %s: %w", i, menuItem.Name, ErrMenuItemUnavailable)
		}
		cart.AddQuantity(id, menuItem.Name, billing.FromNumeric(menuItem.Price), item.Quantity)
		if n := strings.TrimSpace(item.Notes); n != "" && notes[id] == "" {
			notes[id] = n
		}
	}
	totals := cart.Totals(s.rates)

	// --- Insert order ---
	nextNum, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, persist("get next order number", err)
	}

	staffID := pgtype.UUID{}
	if req.Actor.IsStaff() {
		staffID = pgtype.UUID{Bytes: req.Actor.StaffID, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   nextNum,
		OrderType:     orderType,
		CustomerID:    customerID,
		StaffID:       staffID,
		TableID:       tableID,
		RoomID:        roomID,
		Subtotal:      billing.ToNumeric(totals.Subtotal),
		ServiceCharge: billing.ToNumeric(totals.ServiceCharge),
		Vat:           billing.ToNumeric(totals.VAT),
		Total:         billing.ToNumeric(totals.Total),
		Notes:         optionalText(req.Notes),
	})
	if err != nil {
		if isUniqueViolation(err, orderNumberConstraint) {
			return nil, err
		}
		return nil, persist("create order", err)
	}

	// --- Insert items ---
	items := make([]database.OrderItem, 0, cart.Len())
	for _, line := range cart.Lines() {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			UnitPrice:  billing.ToNumeric(line.UnitPrice),
			TotalPrice: billing.ToNumeric(line.Total()),
			Notes:      optionalText(notes[line.MenuItemID]),
		})
		if err != nil {
			return nil, persist("create order item", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persist("commit tx", err)
	}

	return &OrderResult{Order: order, Items: items}, nil
}

// resolveCustomer returns the customer the order is for. Customers always
// order for themselves; staff may name a customer.
func (s *OrderService) resolveCustomer(ctx context.Context, store OrderStore, req CreateOrderRequest) (pgtype.UUID, error) {
	if !req.Actor.IsStaff() && req.Actor.CustomerID != uuid.Nil {
		return pgtype.UUID{Bytes: req.Actor.CustomerID, Valid: true}, nil
	}
	id, err := optionalUUID(req.CustomerID, ErrInvalidCustomerID)
	if err != nil || !id.Valid {
		return id, err
	}
	if _, err := store.GetCustomer(ctx, id.Bytes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, ErrInvalidCustomerID
		}
		return pgtype.UUID{}, persist("get customer", err)
	}
	return id, nil
}

// GetOrder returns the order with its items. Customers only see their own
// orders; anyone else's is reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (*OrderDetail, error) {
	var detail *OrderDetail
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		detail, err = s.getOrder(ctx, s.newStore(db), id, actor)
		return err
	})
	return detail, err
}

func (s *OrderService) getOrder(ctx context.Context, store OrderStore, id uuid.UUID, actor lifecycle.Actor) (*OrderDetail, error) {
	order, err := store.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundOr("get order", err, "order")
	}
	if !canSeeOrder(order, actor) {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	items, err := store.ListOrderItemsByOrder(ctx, id)
	if err != nil {
		return nil, persist("list order items", err)
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// ListOrders returns orders newest first. Customers are limited to their
// own.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter, actor lifecycle.Actor) ([]database.Order, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	params := database.ListOrdersParams{
		Statuses:      f.Statuses,
		OrderTypes:    f.OrderTypes,
		PaymentStatus: f.PaymentStatus,
		Limit:         f.Limit,
		Offset:        f.Offset,
	}
	if !actor.IsStaff() {
		params.CustomerID = pgtype.UUID{Bytes: actor.CustomerID, Valid: true}
	}
	var orders []database.Order
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		var err error
		orders, err = s.newStore(db).ListOrders(ctx, params)
		if err != nil {
			return persist("list orders", err)
		}
		return nil
	})
	return orders, err
}

// UpdateStatus applies one lifecycle transition. The write is a
// compare-and-set on the status that was read, so two actors racing for the
// same order cannot both succeed.
func (s *OrderService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrder(ctx, req.OrderID)
	if err != nil {
		return database.Order{}, notFoundOr("get order", err, "order")
	}

	transition, err := lifecycle.AttemptOrderTransition(lifecycle.OrderState{
		Status:        current.Status,
		OrderType:     current.OrderType,
		PaymentStatus: current.PaymentStatus,
	}, req.Status, req.Actor)
	if err != nil {
		return database.Order{}, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:             current.ID,
		Status:         transition.To,
		ExpectedStatus: transition.From,
	})
	if err != nil {
		return database.Order{}, conflictOr("update order status", err)
	}

	if transition.ItemStatus != "" {
		if err := store.UpdateOrderItemsStatus(ctx, database.UpdateOrderItemsStatusParams{
			OrderID: current.ID,
			Status:  transition.ItemStatus,
		}); err != nil {
			return database.Order{}, persist("update order items", err)
		}
	}

	if transition.CreatesDelivery {
		if err := s.createDelivery(ctx, store, current, req); err != nil {
			return database.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventOrderStatusChanged, updated.ID.String(), map[string]any{
		"id":           updated.ID,
		"order_number": updated.OrderNumber,
		"from":         transition.From,
		"to":           transition.To,
	})
	return updated, nil
}

// Cancel moves a non-terminal order to cancelled. Cancelling twice fails
// with lifecycle.ErrIllegalTransition.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (database.Order, error) {
	return s.UpdateStatus(ctx, UpdateStatusRequest{
		OrderID: id,
		Status:  database.OrderStatusCancelled,
		Actor:   actor,
	})
}

func (s *OrderService) createDelivery(ctx context.Context, store OrderStore, order database.Order, req UpdateStatusRequest) error {
	phone := pgtype.Text{}
	if order.CustomerID.Valid {
		c, err := store.GetCustomer(ctx, order.CustomerID.Bytes)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return persist("get customer", err)
		}
		if err == nil {
			phone = pgtype.Text{String: c.Phone, Valid: true}
		}
	}
	staffID := pgtype.UUID{}
	if req.Actor.IsStaff() {
		staffID = pgtype.UUID{Bytes: req.Actor.StaffID, Valid: true}
	}
	if _, err := store.CreateDelivery(ctx, database.CreateDeliveryParams{
		OrderID:         order.ID,
		StaffID:         staffID,
		DeliveryAddress: optionalText(req.DeliveryAddress),
		CustomerPhone:   phone,
	}); err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("delivery already recorded: %w", ErrStatusConflict)
		}
		return persist("create delivery", err)
	}
	return nil
}

// --- Helpers ---

func canSeeOrder(o database.Order, actor lifecycle.Actor) bool {
	if actor.IsStaff() {
		return true
	}
	return o.CustomerID.Valid && uuid.UUID(o.CustomerID.Bytes) == actor.CustomerID
}

func validateOrderType(s string) (database.OrderType, error) {
	switch t := database.OrderType(s); t {
	case database.OrderTypeDineIn, database.OrderTypeRoomService,
		database.OrderTypeDelivery, database.OrderTypeTakeaway:
		return t, nil
	}
	return "", ErrInvalidOrderType
}

func optionalUUID(s string, invalidErr error) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, invalidErr
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
