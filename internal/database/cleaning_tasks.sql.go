package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCleaningTask = `-- name: CreateCleaningTask :one
INSERT INTO cleaning_tasks (room_id, task_type, requested_by, notes)
VALUES ($1, $2, $3, $4)
RETURNING id, room_id, staff_id, task_type, status, requested_by, completed_at, notes, created_at
`

type CreateCleaningTaskParams struct {
	RoomID      uuid.UUID   `json:"room_id"`
	TaskType    string      `json:"task_type"`
	RequestedBy pgtype.UUID `json:"requested_by"`
	Notes       pgtype.Text `json:"notes"`
}

func (q *Queries) CreateCleaningTask(ctx context.Context, arg CreateCleaningTaskParams) (CleaningTask, error) {
	row := q.db.QueryRow(ctx, createCleaningTask, arg.RoomID, arg.TaskType, arg.RequestedBy, arg.Notes)
	var i CleaningTask
	err := row.Scan(
		&i.ID,
		&i.RoomID,
		&i.StaffID,
		&i.TaskType,
		&i.Status,
		&i.RequestedBy,
		&i.CompletedAt,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const completeCleaningTasks = `-- name: CompleteCleaningTasks :execrows
UPDATE cleaning_tasks
SET status = 'completed', staff_id = COALESCE(staff_id, $2), completed_at = now()
WHERE room_id = $1 AND status <> 'completed'
`

type CompleteCleaningTasksParams struct {
	RoomID  uuid.UUID   `json:"room_id"`
	StaffID pgtype.UUID `json:"staff_id"`
}

// CompleteCleaningTasks closes every open task on a room and reports how
// many there were.
func (q *Queries) CompleteCleaningTasks(ctx context.Context, arg CompleteCleaningTasksParams) (int64, error) {
	tag, err := q.db.Exec(ctx, completeCleaningTasks, arg.RoomID, arg.StaffID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listCleaningTasks = `-- name: ListCleaningTasks :many
SELECT t.id, t.room_id, t.staff_id, t.task_type, t.status, t.requested_by, t.completed_at, t.notes, t.created_at,
       r.room_number, r.class_type
FROM cleaning_tasks t
JOIN rooms r ON r.id = t.room_id
WHERE (cardinality($1::text[]) = 0 OR t.status = ANY($1::text[]))
ORDER BY t.created_at DESC
LIMIT $2
`

type ListCleaningTasksParams struct {
	Statuses []string `json:"statuses"`
	Limit    int32    `json:"limit"`
}

type ListCleaningTasksRow struct {
	CleaningTask
	RoomNumber    string `json:"room_number"`
	RoomClassType string `json:"room_class_type"`
}

// ListCleaningTasks returns the newest tasks with their room.
func (q *Queries) ListCleaningTasks(ctx context.Context, arg ListCleaningTasksParams) ([]ListCleaningTasksRow, error) {
	statuses := arg.Statuses
	if statuses == nil {
		statuses = []string{}
	}
	rows, err := q.db.Query(ctx, listCleaningTasks, statuses, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCleaningTasksRow{}
	for rows.Next() {
		var i ListCleaningTasksRow
		if err := rows.Scan(
			&i.ID,
			&i.RoomID,
			&i.StaffID,
			&i.TaskType,
			&i.Status,
			&i.RequestedBy,
			&i.CompletedAt,
			&i.Notes,
			&i.CreatedAt,
			&i.RoomNumber,
			&i.RoomClassType,
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
