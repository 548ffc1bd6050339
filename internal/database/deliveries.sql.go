package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const deliveryColumns = `id, order_id, staff_id, status, delivery_address, pickup_time, delivery_time,
    customer_phone, notes, created_at`

func scanDelivery(row pgx.Row) (Delivery, error) {
	var i Delivery
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.StaffID,
		&i.Status,
		&i.DeliveryAddress,
		&i.PickupTime,
		&i.DeliveryTime,
		&i.CustomerPhone,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const createDelivery = `-- name: CreateDelivery :one
INSERT INTO deliveries (order_id, staff_id, status, delivery_address, pickup_time, customer_phone, notes)
VALUES ($1, $2, 'picked_up', $3, now(), $4, $5)
RETURNING ` + deliveryColumns

type CreateDeliveryParams struct {
	OrderID         uuid.UUID   `json:"order_id"`
	StaffID         pgtype.UUID `json:"staff_id"`
	DeliveryAddress pgtype.Text `json:"delivery_address"`
	CustomerPhone   pgtype.Text `json:"customer_phone"`
	Notes           pgtype.Text `json:"notes"`
}

// CreateDelivery records a picked-up delivery with pickup_time set to now.
func (q *Queries) CreateDelivery(ctx context.Context, arg CreateDeliveryParams) (Delivery, error) {
	row := q.db.QueryRow(ctx, createDelivery,
		arg.OrderID,
		arg.StaffID,
		arg.DeliveryAddress,
		arg.CustomerPhone,
		arg.Notes,
	)
	return scanDelivery(row)
}

const getDelivery = `-- name: GetDelivery :one
SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1
`

func (q *Queries) GetDelivery(ctx context.Context, id uuid.UUID) (Delivery, error) {
	return scanDelivery(q.db.QueryRow(ctx, getDelivery, id))
}

const listDeliveries = `-- name: ListDeliveries :many
SELECT ` + deliveryColumns + ` FROM deliveries
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
  AND ($2::uuid IS NULL OR staff_id = $2)
ORDER BY created_at DESC
`

type ListDeliveriesParams struct {
	Statuses []string    `json:"statuses"`
	StaffID  pgtype.UUID `json:"staff_id"`
}

func (q *Queries) ListDeliveries(ctx context.Context, arg ListDeliveriesParams) ([]Delivery, error) {
	statuses := arg.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	rows, err := q.db.Query(ctx, listDeliveries, statuses, arg.StaffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Delivery{}
	for rows.Next() {
		i, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markDeliveryDelivered = `-- name: MarkDeliveryDelivered :one
UPDATE deliveries SET status = 'delivered', delivery_time = now()
WHERE id = $1 AND status IN ('picked_up', 'in_transit')
RETURNING ` + deliveryColumns

// MarkDeliveryDelivered returns pgx.ErrNoRows unless the delivery is still
// on the road.
func (q *Queries) MarkDeliveryDelivered(ctx context.Context, id uuid.UUID) (Delivery, error) {
	return scanDelivery(q.db.QueryRow(ctx, markDeliveryDelivered, id))
}
