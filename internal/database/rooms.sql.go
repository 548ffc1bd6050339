package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const roomColumns = `id, class_type, name, room_number, price, status, floor, created_at`

func scanRoom(row pgx.Row) (Room, error) {
	var i Room
	err := row.Scan(
		&i.ID,
		&i.ClassType,
		&i.Name,
		&i.RoomNumber,
		&i.Price,
		&i.Status,
		&i.Floor,
		&i.CreatedAt,
	)
	return i, err
}

const createRoom = `-- name: CreateRoom :one
INSERT INTO rooms (class_type, name, room_number, price, floor)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (room_number) DO UPDATE SET room_number = EXCLUDED.room_number
RETURNING ` + roomColumns

type CreateRoomParams struct {
	ClassType  string         `json:"class_type"`
	Name       string         `json:"name"`
	RoomNumber string         `json:"room_number"`
	Price      pgtype.Numeric `json:"price"`
	Floor      int32          `json:"floor"`
}

// CreateRoom is idempotent on room_number.
func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, createRoom,
		arg.ClassType,
		arg.Name,
		arg.RoomNumber,
		arg.Price,
		arg.Floor,
	)
	return scanRoom(row)
}

const getRoom = `-- name: GetRoom :one
SELECT ` + roomColumns + ` FROM rooms WHERE id = $1
`

func (q *Queries) GetRoom(ctx context.Context, id uuid.UUID) (Room, error) {
	return scanRoom(q.db.QueryRow(ctx, getRoom, id))
}

const listRooms = `-- name: ListRooms :many
SELECT ` + roomColumns + ` FROM rooms
WHERE ($1::text = '' OR status = $1)
ORDER BY floor, room_number
`

func (q *Queries) ListRooms(ctx context.Context, status string) ([]Room, error) {
	rows, err := q.db.Query(ctx, listRooms, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Room{}
	for rows.Next() {
		i, err := scanRoom(rows)
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

const updateRoomStatus = `-- name: UpdateRoomStatus :one
UPDATE rooms SET status = $2
WHERE id = $1 AND status = ANY($3::text[])
RETURNING ` + roomColumns

type UpdateRoomStatusParams struct {
	ID           uuid.UUID  `json:"id"`
	Status       RoomStatus `json:"status"`
	FromStatuses []string   `json:"from_statuses"`
}

// UpdateRoomStatus moves the room only when its current status is one of
// FromStatuses; otherwise it returns pgx.ErrNoRows.
func (q *Queries) UpdateRoomStatus(ctx context.Context, arg UpdateRoomStatusParams) (Room, error) {
	row := q.db.QueryRow(ctx, updateRoomStatus, arg.ID, string(arg.Status), arg.FromStatuses)
	return scanRoom(row)
}
