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
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPaymentMethod = invalid("invalid payment_method")
	ErrInvalidDiscount      = invalid("discount must be between 0 and the order total")
)

// SettlementStore defines the DB methods needed to settle orders and print
// receipts.
type SettlementStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsByOrderRow, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	SettleOrder(ctx context.Context, arg database.SettleOrderParams) (database.Order, error)
}

type NewSettlementStore func(db database.DBTX) SettlementStore

type SettleRequest struct {
	OrderID         uuid.UUID
	Method          string
	TransactionCode string
	Discount        decimal.Decimal
	Actor           lifecycle.Actor
}

type SettleResult struct {
	Order   database.Order
	Receipt billing.Receipt
}

// SettlementService takes payment for orders and builds their receipts.
type SettlementService struct {
	pool     TxBeginner
	newStore NewSettlementStore
	rates    billing.Rates
	hotel    billing.Hotel
	notify   Notifier
	now      func() time.Time
}

func NewSettlementService(pool TxBeginner, newStore NewSettlementStore, rates billing.Rates, hotel billing.Hotel, notify Notifier) *SettlementService {
	return &SettlementService{
		pool:     pool,
		newStore: newStore,
		rates:    rates,
		hotel:    hotel,
		notify:   notify,
		now:      time.Now,
	}
}

// Settle marks an unpaid order paid and completed. The order row is locked
// for the duration, and the write is still conditional on the payment and
// order status that were read.
func (s *SettlementService) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	method, err := validatePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persist("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		return nil, notFoundOr("lock order", err, "order")
	}
	if order.PaymentStatus == database.PaymentStatusPaid {
		return nil, ErrAlreadySettled
	}
	if req.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}
	if err := lifecycle.CheckSettlement(lifecycle.OrderState{
		Status:        order.Status,
		OrderType:     order.OrderType,
		PaymentStatus: order.PaymentStatus,
	}, req.Actor); err != nil {
		return nil, err
	}

	// The payable amount is the rounded total; the discount comes off that.
	totals := billing.Totals{
		Subtotal:      billing.FromNumeric(order.Subtotal),
		ServiceCharge: billing.FromNumeric(order.ServiceCharge),
		VAT:           billing.FromNumeric(order.Vat),
		Total:         billing.Round(billing.FromNumeric(order.Total)),
	}
	totals, err = billing.ApplyDiscount(totals, req.Discount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDiscount, err)
	}

	code := strings.TrimSpace(req.TransactionCode)
	if code == "" && isMobileMoney(method) {
		code = billing.NewTransactionCode(s.now())
	}

	settled, err := store.SettleOrder(ctx, database.SettleOrderParams{
		ID:              order.ID,
		ExpectedStatus:  order.Status,
		PaymentMethod:   method,
		TransactionCode: optionalText(code),
		Discount:        billing.ToNumeric(totals.Discount),
		Total:           billing.ToNumeric(totals.Total),
	})
	if err != nil {
		return nil, conflictOr("settle order", err)
	}

	receipt, err := s.buildReceipt(ctx, store, settled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persist("commit tx", err)
	}

	s.notify.emit(ctx, enum.EventOrderSettled, settled.ID.String(), map[string]any{
		"id":               settled.ID,
		"order_number":     settled.OrderNumber,
		"payment_method":   method,
		"transaction_code": code,
		"discount":         totals.Discount.StringFixed(2),
		"total":            totals.Total.StringFixed(2),
	})
	return &SettleResult{Order: settled, Receipt: receipt}, nil
}

// Receipt rebuilds the receipt of a settled order. Customers may only print
// their own.
func (s *SettlementService) Receipt(ctx context.Context, id uuid.UUID, actor lifecycle.Actor) (billing.Receipt, error) {
	var receipt billing.Receipt
	err := readTx(ctx, s.pool, func(db database.DBTX) error {
		store := s.newStore(db)
		order, err := store.GetOrder(ctx, id)
		if err != nil {
			return notFoundOr("get order", err, "order")
		}
		if !canSeeOrder(order, actor) {
			return fmt.Errorf("order: %w", ErrNotFound)
		}
		if order.PaymentStatus != database.PaymentStatusPaid {
			return ErrNotSettled
		}
		receipt, err = s.buildReceipt(ctx, store, order)
		return err
	})
	return receipt, err
}

func (s *SettlementService) buildReceipt(ctx context.Context, store SettlementStore, order database.Order) (billing.Receipt, error) {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return billing.Receipt{}, persist("list order items", err)
	}

	customer := ""
	if order.CustomerID.Valid {
		c, err := store.GetCustomer(ctx, order.CustomerID.Bytes)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return billing.Receipt{}, persist("get customer", err)
		}
		customer = c.Name
	}

	lines := make([]billing.Line, len(items))
	for i, it := range items {
		lines[i] = billing.Line{
			MenuItemID: it.MenuItemID,
			Name:       it.MenuItemName,
			UnitPrice:  billing.FromNumeric(it.UnitPrice),
			Quantity:   it.Quantity,
		}
	}

	return billing.BuildReceipt(billing.ReceiptOrder{
		OrderNumber:     order.OrderNumber,
		CustomerName:    customer,
		OrderType:       string(order.OrderType),
		CompletedAt:     completedAt(order),
		Lines:           lines,
		Subtotal:        billing.FromNumeric(order.Subtotal),
		ServiceCharge:   billing.FromNumeric(order.ServiceCharge),
		VAT:             billing.FromNumeric(order.Vat),
		Discount:        billing.FromNumeric(order.Discount),
		Total:           billing.FromNumeric(order.Total),
		PaymentMethod:   string(order.PaymentMethod.PaymentMethod),
		TransactionCode: order.TransactionCode.String,
	}, s.hotel, s.rates), nil
}

func completedAt(o database.Order) time.Time {
	if o.CompletedAt.Valid {
		return o.CompletedAt.Time
	}
	return o.UpdatedAt
}

func validatePaymentMethod(s string) (database.PaymentMethod, error) {
	switch m := database.PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case database.PaymentMethodMpesa, database.PaymentMethodCash, database.PaymentMethodCard,
		database.PaymentMethodTcash, database.PaymentMethodAirtelMoney:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

func isMobileMoney(m database.PaymentMethod) bool {
	switch m {
	case database.PaymentMethodMpesa, database.PaymentMethodTcash, database.PaymentMethodAirtelMoney:
		return true
	}
	return false
}

// nullPaymentMethod converts an optional method for nullable columns.
func nullPaymentMethod(s string) (database.NullPaymentMethod, error) {
	if strings.TrimSpace(s) == "" {
		return database.NullPaymentMethod{}, nil
	}
	m, err := validatePaymentMethod(s)
	if err != nil {
		return database.NullPaymentMethod{}, err
	}
	return database.NullPaymentMethod{PaymentMethod: m, Valid: true}, nil
}
