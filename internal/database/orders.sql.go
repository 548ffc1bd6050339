package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, order_type, customer_id, staff_id, table_id, room_id, status,
    subtotal, service_charge, vat, discount, total, payment_method, payment_status,
    transaction_code, notes, created_at, updated_at, completed_at`

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.OrderType,
		&i.CustomerID,
		&i.StaffID,
		&i.TableID,
		&i.RoomID,
		&i.Status,
		&i.Subtotal,
		&i.ServiceCharge,
		&i.Vat,
		&i.Discount,
		&i.Total,
		&i.PaymentMethod,
		&i.PaymentStatus,
		&i.TransactionCode,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT (COALESCE(MAX(order_number), 0) + 1)::int4 FROM orders
`

func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber)
	var next int32
	err := row.Scan(&next)
	return next, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (order_number, order_type, customer_id, staff_id, table_id, room_id,
    subtotal, service_charge, vat, discount, total, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber   int32          `json:"order_number"`
	OrderType     OrderType      `json:"order_type"`
	CustomerID    pgtype.UUID    `json:"customer_id"`
	StaffID       pgtype.UUID    `json:"staff_id"`
	TableID       pgtype.UUID    `json:"table_id"`
	RoomID        pgtype.UUID    `json:"room_id"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	ServiceCharge pgtype.Numeric `json:"service_charge"`
	Vat           pgtype.Numeric `json:"vat"`
	Total         pgtype.Numeric `json:"total"`
	Notes         pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		string(arg.OrderType),
		arg.CustomerID,
		arg.StaffID,
		arg.TableID,
		arg.RoomID,
		arg.Subtotal,
		arg.ServiceCharge,
		arg.Vat,
		arg.Total,
		arg.Notes,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, total_price, notes)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, menu_item_id, quantity, unit_price, total_price, status, notes, created_at
`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID      `json:"order_id"`
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Quantity   int32          `json:"quantity"`
	UnitPrice  pgtype.Numeric `json:"unit_price"`
	TotalPrice pgtype.Numeric `json:"total_price"`
	Notes      pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
		arg.Notes,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.Status,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR NO KEY UPDATE
`

// GetOrderForUpdate locks the order row until the surrounding transaction ends.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
  AND (cardinality($2::text[]) = 0 OR order_type = ANY($2::text[]))
  AND ($3::uuid IS NULL OR customer_id = $3)
  AND ($4::text = '' OR payment_status = $4)
ORDER BY created_at DESC
LIMIT $5 OFFSET $6
`

type ListOrdersParams struct {
	Statuses      []string    `json:"statuses"`
	OrderTypes    []string    `json:"order_types"`
	CustomerID    pgtype.UUID `json:"customer_id"`
	PaymentStatus string      `json:"payment_status"`
	Limit         int32       `json:"limit"`
	Offset        int32       `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	statuses := arg.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	types := arg.OrderTypes
	if types == nil {
		types = []string{}
	}
	rows, err := q.db.Query(ctx, listOrders,
		statuses,
		types,
		arg.CustomerID,
		arg.PaymentStatus,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
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

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.unit_price, oi.total_price,
    oi.status, oi.notes, oi.created_at, mi.name AS menu_item_name
FROM order_items oi
JOIN menu_items mi ON mi.id = oi.menu_item_id
WHERE oi.order_id = $1
ORDER BY oi.created_at, oi.id
`

type ListOrderItemsByOrderRow struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	MenuItemID   uuid.UUID       `json:"menu_item_id"`
	Quantity     int32           `json:"quantity"`
	UnitPrice    pgtype.Numeric  `json:"unit_price"`
	TotalPrice   pgtype.Numeric  `json:"total_price"`
	Status       OrderItemStatus `json:"status"`
	Notes        pgtype.Text     `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	MenuItemName string          `json:"menu_item_name"`
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderItemsByOrderRow{}
	for rows.Next() {
		var i ListOrderItemsByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
			&i.Status,
			&i.Notes,
			&i.CreatedAt,
			&i.MenuItemName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2::text,
    updated_at = now(),
    completed_at = CASE WHEN $2::text = 'completed' THEN now() ELSE completed_at END
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID             uuid.UUID   `json:"id"`
	Status         OrderStatus `json:"status"`
	ExpectedStatus OrderStatus `json:"expected_status"`
}

// UpdateOrderStatus returns pgx.ErrNoRows when the order is no longer in
// ExpectedStatus.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, string(arg.Status), string(arg.ExpectedStatus)))
}

const updateOrderItemsStatus = `-- name: UpdateOrderItemsStatus :exec
UPDATE order_items SET status = $2 WHERE order_id = $1
`

type UpdateOrderItemsStatusParams struct {
	OrderID uuid.UUID       `json:"order_id"`
	Status  OrderItemStatus `json:"status"`
}

func (q *Queries) UpdateOrderItemsStatus(ctx context.Context, arg UpdateOrderItemsStatusParams) error {
	_, err := q.db.Exec(ctx, updateOrderItemsStatus, arg.OrderID, string(arg.Status))
	return err
}

const settleOrder = `-- name: SettleOrder :one
UPDATE orders
SET payment_method = $3,
    payment_status = 'paid',
    transaction_code = $4,
    discount = $5,
    total = $6,
    status = 'completed',
    completed_at = now(),
    updated_at = now()
WHERE id = $1
  AND status = $2
  AND payment_status IN ('unpaid', 'partial')
RETURNING ` + orderColumns

type SettleOrderParams struct {
	ID              uuid.UUID      `json:"id"`
	ExpectedStatus  OrderStatus    `json:"expected_status"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	TransactionCode pgtype.Text    `json:"transaction_code"`
	Discount        pgtype.Numeric `json:"discount"`
	Total           pgtype.Numeric `json:"total"`
}

// SettleOrder marks an unpaid order paid and completed in one write. It
// returns pgx.ErrNoRows when the order was settled or moved concurrently.
func (q *Queries) SettleOrder(ctx context.Context, arg SettleOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, settleOrder,
		arg.ID,
		string(arg.ExpectedStatus),
		string(arg.PaymentMethod),
		arg.TransactionCode,
		arg.Discount,
		arg.Total,
	)
	return scanOrder(row)
}
