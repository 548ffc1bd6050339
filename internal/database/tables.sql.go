package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const diningTableColumns = `id, class_type, table_number, capacity, status, location, created_at`

func scanDiningTable(row pgx.Row) (DiningTable, error) {
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.ClassType,
		&i.TableNumber,
		&i.Capacity,
		&i.Status,
		&i.Location,
		&i.CreatedAt,
	)
	return i, err
}

const createDiningTable = `-- name: CreateDiningTable :one
INSERT INTO dining_tables (class_type, table_number, capacity, location)
VALUES ($1, $2, $3, $4)
ON CONFLICT (table_number) DO UPDATE SET table_number = EXCLUDED.table_number
RETURNING ` + diningTableColumns

type CreateDiningTableParams struct {
	ClassType   string `json:"class_type"`
	TableNumber int32  `json:"table_number"`
	Capacity    int32  `json:"capacity"`
	Location    string `json:"location"`
}

func (q *Queries) CreateDiningTable(ctx context.Context, arg CreateDiningTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, createDiningTable, arg.ClassType, arg.TableNumber, arg.Capacity, arg.Location)
	return scanDiningTable(row)
}

const getDiningTable = `-- name: GetDiningTable :one
SELECT ` + diningTableColumns + ` FROM dining_tables WHERE id = $1
`

func (q *Queries) GetDiningTable(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	return scanDiningTable(q.db.QueryRow(ctx, getDiningTable, id))
}

const listDiningTables = `-- name: ListDiningTables :many
SELECT ` + diningTableColumns + ` FROM dining_tables
WHERE ($1::text = '' OR status = $1)
ORDER BY table_number
`

func (q *Queries) ListDiningTables(ctx context.Context, status string) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listDiningTables, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DiningTable{}
	for rows.Next() {
		i, err := scanDiningTable(rows)
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

const updateDiningTableStatus = `-- name: UpdateDiningTableStatus :one
UPDATE dining_tables SET status = $2
WHERE id = $1 AND status = ANY($3::text[])
RETURNING ` + diningTableColumns

type UpdateDiningTableStatusParams struct {
	ID           uuid.UUID   `json:"id"`
	Status       TableStatus `json:"status"`
	FromStatuses []string    `json:"from_statuses"`
}

func (q *Queries) UpdateDiningTableStatus(ctx context.Context, arg UpdateDiningTableStatusParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, updateDiningTableStatus, arg.ID, string(arg.Status), arg.FromStatuses)
	return scanDiningTable(row)
}
