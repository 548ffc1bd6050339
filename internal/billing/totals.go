// Package billing prices orders: line totals, service charge, VAT, discounts
// and the receipt projection of a settled order. Everything here is pure;
// callers own persistence.
package billing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidDiscount is returned when a discount is negative or exceeds the
// order total.
var ErrInvalidDiscount = errors.New("invalid discount")

// Rates are the surcharges applied on top of the item subtotal.
type Rates struct {
	ServiceCharge decimal.Decimal
	VAT           decimal.Decimal
}

// DefaultRates is 10% service charge and 16% VAT.
var DefaultRates = Rates{
	ServiceCharge: decimal.RequireFromString("0.10"),
	VAT:           decimal.RequireFromString("0.16"),
}

// Line is one priced entry of an order.
type Line struct {
	MenuItemID uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int32
}

// Total is UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Totals is the full-precision breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	ServiceCharge decimal.Decimal
	VAT           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
}

// ComputeTotals prices lines. VAT is charged on subtotal plus service
// charge. Nothing is rounded; use Round for display.
func ComputeTotals(lines []Line, rates Rates) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	service := subtotal.Mul(rates.ServiceCharge)
	vat := subtotal.Add(service).Mul(rates.VAT)
	return Totals{
		Subtotal:      subtotal,
		ServiceCharge: service,
		VAT:           vat,
		Discount:      decimal.Zero,
		Total:         subtotal.Add(service).Add(vat),
	}
}

// Round rounds half away from zero to whole currency units.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// ApplyDiscount subtracts discount from t.Total. A discount equal to the
// total is allowed and yields a zero total.
func ApplyDiscount(t Totals, discount decimal.Decimal) (Totals, error) {
	if discount.IsNegative() {
		return Totals{}, fmt.Errorf("%w: %s is negative", ErrInvalidDiscount, discount)
	}
	if discount.GreaterThan(t.Total) {
		return Totals{}, fmt.Errorf("%w: %s exceeds total %s", ErrInvalidDiscount, discount, t.Total)
	}
	t.Discount = discount
	t.Total = t.Total.Sub(discount)
	return t, nil
}

// Rounded returns the totals as shown to a customer.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:      Round(t.Subtotal),
		ServiceCharge: Round(t.ServiceCharge),
		VAT:           Round(t.VAT),
		Discount:      Round(t.Discount),
		Total:         Round(t.Total),
	}
}
