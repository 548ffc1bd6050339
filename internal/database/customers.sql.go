package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, name, phone, email, is_loyal, total_visits, preferred_staff_id, created_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.IsLoyal,
		&i.TotalVisits,
		&i.PreferredStaffID,
		&i.CreatedAt,
	)
	return i, err
}

const createCustomer = `-- name: CreateCustomer :one
INSERT INTO customers (name, phone, email, total_visits)
VALUES ($1, $2, $3, 1)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Email pgtype.Text `json:"email"`
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, createCustomer, arg.Name, arg.Phone, arg.Email))
}

const getCustomer = `-- name: GetCustomer :one
SELECT ` + customerColumns + ` FROM customers WHERE id = $1
`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomer, id))
}

const getCustomerByPhone = `-- name: GetCustomerByPhone :one
SELECT ` + customerColumns + ` FROM customers WHERE phone = $1
`

func (q *Queries) GetCustomerByPhone(ctx context.Context, phone string) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomerByPhone, phone))
}

const incrementCustomerVisits = `-- name: IncrementCustomerVisits :one
UPDATE customers SET total_visits = total_visits + 1 WHERE id = $1
RETURNING ` + customerColumns

func (q *Queries) IncrementCustomerVisits(ctx context.Context, id uuid.UUID) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, incrementCustomerVisits, id))
}
