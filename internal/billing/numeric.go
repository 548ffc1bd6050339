package billing

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FromNumeric converts a NUMERIC column. NULL and NaN read as zero.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// ToNumeric converts d for storage without losing precision.
func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// FormatKES renders d rounded to whole shillings with thousands separators,
// e.g. "KES 1,659".
func FormatKES(d decimal.Decimal) string {
	r := Round(d)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	return "KES " + sign + groupThousands(r.String())
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// NewTransactionCode returns the placeholder code recorded for mobile-money
// payments settled without one: "TXN" followed by the upper-case base-36
// millisecond timestamp.
func NewTransactionCode(now time.Time) string {
	return "TXN" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}
