package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/lifecycle"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// seedBill creates the 1658.80 dine-in order used across settlement tests.
func seedBill(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	nyama := env.store.addMenuItem("Nyama Choma", "500", true)
	chai := env.store.addMenuItem("Masala Chai", "300", true)
	res, err := env.orderService().CreateOrder(context.Background(), basicReq(
		CreateOrderItemRequest{MenuItemID: nyama.String(), Quantity: 2},
		CreateOrderItemRequest{MenuItemID: chai.String(), Quantity: 1},
	))
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return res.Order.ID
}

func TestSettle_DiscountOffRoundedTotal(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)

	res, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID:  id,
		Method:   "Cash",
		Discount: decimal.NewFromInt(159),
		Actor:    staff(enum.RoleReceptionist),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := res.Order
	if !numericEquals(o.Total, "1500") {
		t.Errorf("total: got %v, want 1500", o.Total)
	}
	if !numericEquals(o.Discount, "159") {
		t.Errorf("discount: got %v", o.Discount)
	}
	if o.Status != database.OrderStatusCompleted || o.PaymentStatus != database.PaymentStatusPaid {
		t.Errorf("expected completed/paid, got %s/%s", o.Status, o.PaymentStatus)
	}
	if o.PaymentMethod.PaymentMethod != database.PaymentMethodCash {
		t.Errorf("payment method: got %q", o.PaymentMethod.PaymentMethod)
	}
	if o.TransactionCode.Valid {
		t.Errorf("cash payments get no transaction code, got %q", o.TransactionCode.String)
	}

	r := res.Receipt
	if !r.Total.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("receipt total: got %s", r.Total)
	}
	if !r.Subtotal.Equal(decimal.NewFromInt(1300)) || !r.VAT.Equal(decimal.NewFromInt(229)) {
		t.Errorf("receipt amounts: subtotal %s vat %s", r.Subtotal, r.VAT)
	}
	if len(r.Lines) != 2 {
		t.Errorf("expected 2 receipt lines, got %d", len(r.Lines))
	}
	if r.Customer != "Walk-in" {
		t.Errorf("customer: got %q", r.Customer)
	}
	if r.PaymentMethod != "CASH" {
		t.Errorf("payment method: got %q", r.PaymentMethod)
	}
	if r.Hotel.Name != "SAVANNAH PALACE HOTEL" {
		t.Errorf("hotel: got %q", r.Hotel.Name)
	}
	if got := env.pub.types(); got[len(got)-1] != enum.EventOrderSettled {
		t.Errorf("expected order.settled, got %v", got)
	}
}

func TestSettle_NoDiscount(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)

	res, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID: id,
		Method:  "card",
		Actor:   staff(enum.RoleManager),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numericEquals(res.Order.Total, "1659") {
		t.Errorf("total: got %v, want 1659", res.Order.Total)
	}
}

func TestSettle_Twice(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)
	svc := env.settlementService()
	req := SettleRequest{OrderID: id, Method: "cash", Actor: staff(enum.RoleReceptionist)}

	if _, err := svc.Settle(context.Background(), req); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	_, err := svc.Settle(context.Background(), req)
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if env.store.calls["SettleOrder"] != 1 {
		t.Errorf("second settle should not write, got %d writes", env.store.calls["SettleOrder"])
	}
}

func TestSettle_RetryWithBadDiscountStillReportsSettled(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)
	svc := env.settlementService()
	req := SettleRequest{OrderID: id, Method: "cash", Actor: staff(enum.RoleReceptionist)}

	if _, err := svc.Settle(context.Background(), req); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	req.Discount = decimal.NewFromInt(-50)
	_, err := svc.Settle(context.Background(), req)
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestSettle_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  func(id uuid.UUID) SettleRequest
		want error
	}{
		{
			name: "waitstaff cannot settle",
			req: func(id uuid.UUID) SettleRequest {
				return SettleRequest{OrderID: id, Method: "cash", Actor: staff(enum.RoleWaitstaff)}
			},
			want: lifecycle.ErrActorNotAllowed,
		},
		{
			name: "unknown payment method",
			req: func(id uuid.UUID) SettleRequest {
				return SettleRequest{OrderID: id, Method: "bitcoin", Actor: staff(enum.RoleReceptionist)}
			},
			want: ErrInvalidPaymentMethod,
		},
		{
			name: "negative discount",
			req: func(id uuid.UUID) SettleRequest {
				return SettleRequest{OrderID: id, Method: "cash", Discount: decimal.NewFromInt(-10), Actor: staff(enum.RoleReceptionist)}
			},
			want: ErrInvalidDiscount,
		},
		{
			name: "discount above total",
			req: func(id uuid.UUID) SettleRequest {
				return SettleRequest{OrderID: id, Method: "cash", Discount: decimal.NewFromInt(1700), Actor: staff(enum.RoleReceptionist)}
			},
			want: ErrInvalidDiscount,
		},
		{
			name: "unknown order",
			req: func(uuid.UUID) SettleRequest {
				return SettleRequest{OrderID: uuid.New(), Method: "cash", Actor: staff(enum.RoleReceptionist)}
			},
			want: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			id := seedBill(t, env)

			_, err := env.settlementService().Settle(context.Background(), tt.req(id))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if o := env.store.orders[id]; o.PaymentStatus != database.PaymentStatusUnpaid {
				t.Errorf("order should stay unpaid, got %s", o.PaymentStatus)
			}
		})
	}
}

func TestSettle_CancelledOrder(t *testing.T) {
	env := newTestEnv()
	id := env.store.addOrder(database.Order{Status: database.OrderStatusCancelled, Total: num("100")})

	_, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID: id, Method: "cash", Actor: staff(enum.RoleReceptionist),
	})
	if !errors.Is(err, lifecycle.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestSettle_MobileMoneyGetsTransactionCode(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)

	res, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID: id, Method: "mpesa", Actor: staff(enum.RoleReceptionist),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := billing.NewTransactionCode(time.UnixMilli(1700000000000))
	if res.Order.TransactionCode.String != want {
		t.Errorf("transaction code: got %q, want %q", res.Order.TransactionCode.String, want)
	}
	if res.Receipt.TransactionCode != want {
		t.Errorf("receipt code: got %q", res.Receipt.TransactionCode)
	}
}

func TestSettle_KeepsGivenTransactionCode(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)

	res, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID: id, Method: "airtel_money", TransactionCode: " QK7ABC123 ", Actor: staff(enum.RoleReceptionist),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Order.TransactionCode.String != "QK7ABC123" {
		t.Errorf("transaction code: got %q", res.Order.TransactionCode.String)
	}
}

func TestSettle_LostRaceIsConflict(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)
	env.store.fail["SettleOrder"] = pgx.ErrNoRows

	_, err := env.settlementService().Settle(context.Background(), SettleRequest{
		OrderID: id, Method: "cash", Actor: staff(enum.RoleReceptionist),
	})
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestReceipt(t *testing.T) {
	env := newTestEnv()
	id := seedBill(t, env)
	svc := env.settlementService()
	desk := staff(enum.RoleReceptionist)

	if _, err := svc.Receipt(context.Background(), id, desk); !errors.Is(err, ErrNotSettled) {
		t.Fatalf("unsettled order: expected ErrNotSettled, got %v", err)
	}

	res, err := svc.Settle(context.Background(), SettleRequest{OrderID: id, Method: "cash", Discount: decimal.NewFromInt(159), Actor: desk})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	first, err := svc.Receipt(context.Background(), id, desk)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	second, err := svc.Receipt(context.Background(), id, desk)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("receipts built from the same order should be identical")
	}
	if first.Render() != res.Receipt.Render() {
		t.Error("reprinted receipt should match the one issued at settlement")
	}
	if env.tx.commits != 2 {
		t.Errorf("receipt reads should not commit, got %d commits", env.tx.commits)
	}
}

func TestReceipt_OtherCustomer(t *testing.T) {
	env := newTestEnv()
	owner := env.store.addCustomer("Wanjiku", "254711000111")
	id := env.store.addOrder(database.Order{
		CustomerID:    pgUUID(owner),
		PaymentStatus: database.PaymentStatusPaid,
		Status:        database.OrderStatusCompleted,
	})

	_, err := env.settlementService().Receipt(context.Background(), id, customer(uuid.New()))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	r, err := env.settlementService().Receipt(context.Background(), id, customer(owner))
	if err != nil {
		t.Fatalf("owner receipt: %v", err)
	}
	if r.Customer != "Wanjiku" {
		t.Errorf("customer: got %q", r.Customer)
	}
}
