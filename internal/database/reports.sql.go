package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const getPaymentSummary = `-- name: GetPaymentSummary :many
SELECT payment_method::text AS payment_method,
    COUNT(*)::int8 AS order_count,
    COALESCE(SUM(total), 0)::numeric AS revenue,
    COALESCE(SUM(discount), 0)::numeric AS discounts
FROM orders
WHERE payment_status = 'paid'
  AND completed_at >= $1 AND completed_at < $2
GROUP BY payment_method
ORDER BY revenue DESC
`

type GetPaymentSummaryParams struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type GetPaymentSummaryRow struct {
	PaymentMethod string         `json:"payment_method"`
	OrderCount    int64          `json:"order_count"`
	Revenue       pgtype.Numeric `json:"revenue"`
	Discounts     pgtype.Numeric `json:"discounts"`
}

// GetPaymentSummary groups settled orders completed in [From, To) by method.
func (q *Queries) GetPaymentSummary(ctx context.Context, arg GetPaymentSummaryParams) ([]GetPaymentSummaryRow, error) {
	rows, err := q.db.Query(ctx, getPaymentSummary, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetPaymentSummaryRow{}
	for rows.Next() {
		var i GetPaymentSummaryRow
		if err := rows.Scan(&i.PaymentMethod, &i.OrderCount, &i.Revenue, &i.Discounts); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countOrdersByStatus = `-- name: CountOrdersByStatus :many
SELECT status, COUNT(*)::int8 AS count
FROM orders
WHERE created_at >= $1 AND created_at < $2
GROUP BY status
ORDER BY status
`

type CountOrdersByStatusParams struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type CountOrdersByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountOrdersByStatus(ctx context.Context, arg CountOrdersByStatusParams) ([]CountOrdersByStatusRow, error) {
	rows, err := q.db.Query(ctx, countOrdersByStatus, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CountOrdersByStatusRow{}
	for rows.Next() {
		var i CountOrdersByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRoomsByStatus = `-- name: CountRoomsByStatus :many
SELECT status, COUNT(*)::int8 AS count FROM rooms GROUP BY status ORDER BY status
`

type CountRoomsByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountRoomsByStatus(ctx context.Context) ([]CountRoomsByStatusRow, error) {
	rows, err := q.db.Query(ctx, countRoomsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CountRoomsByStatusRow{}
	for rows.Next() {
		var i CountRoomsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
