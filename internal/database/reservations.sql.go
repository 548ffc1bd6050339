package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `id, reservation_type, customer_id, room_id, table_id, check_in, check_out,
    time_slot, guests, status, prepay_amount, prepay_status, payment_method, transaction_code,
    special_requests, created_at`

func scanReservation(row pgx.Row) (Reservation, error) {
	var i Reservation
	err := row.Scan(
		&i.ID,
		&i.ReservationType,
		&i.CustomerID,
		&i.RoomID,
		&i.TableID,
		&i.CheckIn,
		&i.CheckOut,
		&i.TimeSlot,
		&i.Guests,
		&i.Status,
		&i.PrepayAmount,
		&i.PrepayStatus,
		&i.PaymentMethod,
		&i.TransactionCode,
		&i.SpecialRequests,
		&i.CreatedAt,
	)
	return i, err
}

const createReservation = `-- name: CreateReservation :one
INSERT INTO reservations (reservation_type, customer_id, room_id, table_id, check_in, check_out,
    time_slot, guests, prepay_amount, payment_method, transaction_code, special_requests)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + reservationColumns

type CreateReservationParams struct {
	ReservationType ReservationType   `json:"reservation_type"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	RoomID          pgtype.UUID       `json:"room_id"`
	TableID         pgtype.UUID       `json:"table_id"`
	CheckIn         pgtype.Date       `json:"check_in"`
	CheckOut        pgtype.Date       `json:"check_out"`
	TimeSlot        pgtype.Text       `json:"time_slot"`
	Guests          int32             `json:"guests"`
	PrepayAmount    pgtype.Numeric    `json:"prepay_amount"`
	PaymentMethod   NullPaymentMethod `json:"payment_method"`
	TransactionCode pgtype.Text       `json:"transaction_code"`
	SpecialRequests pgtype.Text       `json:"special_requests"`
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (Reservation, error) {
	row := q.db.QueryRow(ctx, createReservation,
		string(arg.ReservationType),
		arg.CustomerID,
		arg.RoomID,
		arg.TableID,
		arg.CheckIn,
		arg.CheckOut,
		arg.TimeSlot,
		arg.Guests,
		arg.PrepayAmount,
		arg.PaymentMethod,
		arg.TransactionCode,
		arg.SpecialRequests,
	)
	return scanReservation(row)
}

const getReservation = `-- name: GetReservation :one
SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1
`

func (q *Queries) GetReservation(ctx context.Context, id uuid.UUID) (Reservation, error) {
	return scanReservation(q.db.QueryRow(ctx, getReservation, id))
}

const getReservationForUpdate = `-- name: GetReservationForUpdate :one
SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR NO KEY UPDATE
`

func (q *Queries) GetReservationForUpdate(ctx context.Context, id uuid.UUID) (Reservation, error) {
	return scanReservation(q.db.QueryRow(ctx, getReservationForUpdate, id))
}

const listReservations = `-- name: ListReservations :many
SELECT ` + reservationColumns + ` FROM reservations
WHERE (cardinality($1::text[]) = 0 OR status = ANY($1::text[]))
  AND ($2::text = '' OR reservation_type = $2)
  AND ($3::uuid IS NULL OR customer_id = $3)
ORDER BY check_in DESC, created_at DESC
LIMIT $4 OFFSET $5
`

type ListReservationsParams struct {
	Statuses        []string    `json:"statuses"`
	ReservationType string      `json:"reservation_type"`
	CustomerID      pgtype.UUID `json:"customer_id"`
	Limit           int32       `json:"limit"`
	Offset          int32       `json:"offset"`
}

func (q *Queries) ListReservations(ctx context.Context, arg ListReservationsParams) ([]Reservation, error) {
	statuses := arg.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	rows, err := q.db.Query(ctx, listReservations,
		statuses,
		arg.ReservationType,
		arg.CustomerID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Reservation{}
	for rows.Next() {
		i, err := scanReservation(rows)
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

const updateReservationStatus = `-- name: UpdateReservationStatus :one
UPDATE reservations SET status = $2
WHERE id = $1 AND status = $3
RETURNING ` + reservationColumns

type UpdateReservationStatusParams struct {
	ID             uuid.UUID         `json:"id"`
	Status         ReservationStatus `json:"status"`
	ExpectedStatus ReservationStatus `json:"expected_status"`
}

// UpdateReservationStatus returns pgx.ErrNoRows when the reservation is no
// longer in ExpectedStatus.
func (q *Queries) UpdateReservationStatus(ctx context.Context, arg UpdateReservationStatusParams) (Reservation, error) {
	row := q.db.QueryRow(ctx, updateReservationStatus, arg.ID, string(arg.Status), string(arg.ExpectedStatus))
	return scanReservation(row)
}
