package billing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const receiptWidth = 40

// receiptZone is East Africa Time; receipts always print local hotel time.
var receiptZone = time.FixedZone("EAT", 3*3600)

// Hotel is the identity printed at the top of every receipt.
type Hotel struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	VATReg  string `json:"vat_reg"`
}

// ReceiptOrder is the settled order state a receipt is projected from.
type ReceiptOrder struct {
	OrderNumber     int32
	CustomerName    string
	OrderType       string
	CompletedAt     time.Time
	Lines           []Line
	Subtotal        decimal.Decimal
	ServiceCharge   decimal.Decimal
	VAT             decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   string
	TransactionCode string
}

type ReceiptLine struct {
	Quantity int32           `json:"quantity"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// Receipt is the printable projection of a settled order. It is never
// stored; building it twice from the same order gives the same value.
type Receipt struct {
	Hotel             Hotel           `json:"hotel"`
	OrderNumber       int32           `json:"order_number"`
	Customer          string          `json:"customer"`
	OrderType         string          `json:"order_type"`
	IssuedAt          time.Time       `json:"issued_at"`
	Lines             []ReceiptLine   `json:"lines"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceCharge     decimal.Decimal `json:"service_charge"`
	ServiceChargeRate decimal.Decimal `json:"service_charge_rate"`
	VAT               decimal.Decimal `json:"vat"`
	VATRate           decimal.Decimal `json:"vat_rate"`
	Discount          decimal.Decimal `json:"discount"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"payment_method"`
	TransactionCode   string          `json:"transaction_code,omitempty"`
}

// BuildReceipt projects o into a receipt with display-rounded amounts.
func BuildReceipt(o ReceiptOrder, hotel Hotel, rates Rates) Receipt {
	customer := o.CustomerName
	if customer == "" {
		customer = "Walk-in"
	}
	method := strings.ToUpper(o.PaymentMethod)
	if method == "" {
		method = "N/A"
	}
	lines := make([]ReceiptLine, len(o.Lines))
	for i, l := range o.Lines {
		name := l.Name
		if name == "" {
			name = "Item"
		}
		lines[i] = ReceiptLine{Quantity: l.Quantity, Name: name, Amount: Round(l.Total())}
	}
	return Receipt{
		Hotel:             hotel,
		OrderNumber:       o.OrderNumber,
		Customer:          customer,
		OrderType:         strings.ReplaceAll(o.OrderType, "_", " "),
		IssuedAt:          o.CompletedAt.In(receiptZone),
		Lines:             lines,
		Subtotal:          Round(o.Subtotal),
		ServiceCharge:     Round(o.ServiceCharge),
		ServiceChargeRate: rates.ServiceCharge,
		VAT:               Round(o.VAT),
		VATRate:           rates.VAT,
		Discount:          Round(o.Discount),
		Total:             Round(o.Total),
		PaymentMethod:     method,
		TransactionCode:   o.TransactionCode,
	}
}

// Render lays the receipt out for a 40-column thermal printer.
func (r Receipt) Render() string {
	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth)

	center(&b, r.Hotel.Name)
	center(&b, r.Hotel.Address)
	center(&b, "Tel: "+r.Hotel.Phone)
	center(&b, "VAT Reg: "+r.Hotel.VATReg)
	b.WriteString(rule + "\n")

	spread(&b, fmt.Sprintf("Order #: %d", r.OrderNumber), r.IssuedAt.Format("02/01/2006 15:04"))
	spread(&b, "Customer: "+r.Customer, titleCase(r.OrderType))
	b.WriteString(rule + "\n")

	spread(&b, "Item", "Amount")
	for _, l := range r.Lines {
		spread(&b, fmt.Sprintf("%dx %s", l.Quantity, l.Name), FormatKES(l.Amount))
	}
	b.WriteString(rule + "\n")

	spread(&b, "Subtotal", FormatKES(r.Subtotal))
	spread(&b, fmt.Sprintf("Service Charge (%s%%)", percent(r.ServiceChargeRate)), FormatKES(r.ServiceCharge))
	spread(&b, fmt.Sprintf("VAT (%s%%)", percent(r.VATRate)), FormatKES(r.VAT))
	if r.Discount.IsPositive() {
		spread(&b, "Discount", "-"+FormatKES(r.Discount))
	}
	b.WriteString(rule + "\n")
	spread(&b, "TOTAL", FormatKES(r.Total))
	b.WriteString(rule + "\n")

	center(&b, "Paid via: "+r.PaymentMethod)
	if r.TransactionCode != "" {
		center(&b, "Transaction: "+r.TransactionCode)
	}
	b.WriteString("\n")
	center(&b, "Asante Sana - Karibu Tena!")
	center(&b, "Thank you for dining with us")
	return b.String()
}

func center(b *strings.Builder, s string) {
	n := utf8.RuneCountInString(s)
	if n < receiptWidth {
		b.WriteString(strings.Repeat(" ", (receiptWidth-n)/2))
	}
	b.WriteString(s)
	b.WriteString("\n")
}

// spread prints left and right on one line, separated by at least one space.
func spread(b *strings.Builder, left, right string) {
	gap := receiptWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(right)
	b.WriteString("\n")
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
