package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createRating = `-- name: CreateRating :one
INSERT INTO ratings (customer_id, staff_id, order_id, rating, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, customer_id, staff_id, order_id, rating, comment, created_at
`

type CreateRatingParams struct {
	CustomerID pgtype.UUID `json:"customer_id"`
	StaffID    pgtype.UUID `json:"staff_id"`
	OrderID    pgtype.UUID `json:"order_id"`
	Rating     int32       `json:"rating"`
	Comment    pgtype.Text `json:"comment"`
}

func (q *Queries) CreateRating(ctx context.Context, arg CreateRatingParams) (Rating, error) {
	row := q.db.QueryRow(ctx, createRating,
		arg.CustomerID,
		arg.StaffID,
		arg.OrderID,
		arg.Rating,
		arg.Comment,
	)
	var i Rating
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.StaffID,
		&i.OrderID,
		&i.Rating,
		&i.Comment,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentRatings = `-- name: ListRecentRatings :many
SELECT r.id, r.customer_id, r.staff_id, r.order_id, r.rating, r.comment, r.created_at,
       c.name
FROM ratings r
LEFT JOIN customers c ON c.id = r.customer_id
WHERE ($1::uuid IS NULL OR r.staff_id = $1)
ORDER BY r.created_at DESC
LIMIT $2
`

type ListRecentRatingsParams struct {
	StaffID pgtype.UUID `json:"staff_id"`
	Limit   int32       `json:"limit"`
}

type ListRecentRatingsRow struct {
	Rating
	CustomerName pgtype.Text `json:"customer_name"`
}

// ListRecentRatings returns the newest ratings with the customer's name.
// Anonymous ratings carry a NULL name.
func (q *Queries) ListRecentRatings(ctx context.Context, arg ListRecentRatingsParams) ([]ListRecentRatingsRow, error) {
	rows, err := q.db.Query(ctx, listRecentRatings, arg.StaffID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListRecentRatingsRow{}
	for rows.Next() {
		var i ListRecentRatingsRow
		if err := rows.Scan(
			&i.ID,
			&i.CustomerID,
			&i.StaffID,
			&i.OrderID,
			&i.Rating.Rating,
			&i.Comment,
			&i.CreatedAt,
			&i.CustomerName,
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

const listWaitstaffScores = `-- name: ListWaitstaffScores :many
SELECT s.id, s.full_name,
       COALESCE(ROUND(AVG(r.rating)::numeric, 1), 0)::numeric AS rating,
       (SELECT COUNT(*) FROM orders o WHERE o.staff_id = s.id)::int AS total_orders
FROM staff s
LEFT JOIN ratings r ON r.staff_id = s.id
WHERE s.position = 'waitstaff' AND s.is_active
GROUP BY s.id, s.full_name
ORDER BY rating DESC, s.full_name
`

type WaitstaffScore struct {
	ID          uuid.UUID      `json:"id"`
	FullName    string         `json:"full_name"`
	Rating      pgtype.Numeric `json:"rating"`
	TotalOrders int32          `json:"total_orders"`
}

// ListWaitstaffScores returns active waitstaff with their average rating and
// the number of orders they have taken.
func (q *Queries) ListWaitstaffScores(ctx context.Context) ([]WaitstaffScore, error) {
	rows, err := q.db.Query(ctx, listWaitstaffScores)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []WaitstaffScore{}
	for rows.Next() {
		var i WaitstaffScore
		if err := rows.Scan(&i.ID, &i.FullName, &i.Rating, &i.TotalOrders); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
