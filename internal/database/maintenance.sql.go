package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createMaintenanceRequest = `-- name: CreateMaintenanceRequest :one
INSERT INTO maintenance_requests (room_id, reported_by, issue, priority, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, room_id, reported_by, issue, priority, status, resolved_at, notes, created_at
`

type CreateMaintenanceRequestParams struct {
	RoomID     uuid.UUID   `json:"room_id"`
	ReportedBy pgtype.UUID `json:"reported_by"`
	Issue      string      `json:"issue"`
	Priority   string      `json:"priority"`
	Notes      pgtype.Text `json:"notes"`
}

func (q *Queries) CreateMaintenanceRequest(ctx context.Context, arg CreateMaintenanceRequestParams) (MaintenanceRequest, error) {
	row := q.db.QueryRow(ctx, createMaintenanceRequest,
		arg.RoomID,
		arg.ReportedBy,
		arg.Issue,
		arg.Priority,
		arg.Notes,
	)
	var i MaintenanceRequest
	err := row.Scan(
		&i.ID,
		&i.RoomID,
		&i.ReportedBy,
		&i.Issue,
		&i.Priority,
		&i.Status,
		&i.ResolvedAt,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const listMaintenanceRequests = `-- name: ListMaintenanceRequests :many
SELECT m.id, m.room_id, m.reported_by, m.issue, m.priority, m.status, m.resolved_at, m.notes, m.created_at,
       r.room_number
FROM maintenance_requests m
JOIN rooms r ON r.id = m.room_id
WHERE (cardinality($1::text[]) = 0 OR m.status = ANY($1::text[]))
ORDER BY m.created_at DESC
`

type ListMaintenanceRequestsRow struct {
	MaintenanceRequest
	RoomNumber string `json:"room_number"`
}

func (q *Queries) ListMaintenanceRequests(ctx context.Context, statuses []string) ([]ListMaintenanceRequestsRow, error) {
	if statuses == nil {
		statuses = []string{}
	}
	rows, err := q.db.Query(ctx, listMaintenanceRequests, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListMaintenanceRequestsRow{}
	for rows.Next() {
		var i ListMaintenanceRequestsRow
		if err := rows.Scan(
			&i.ID,
			&i.RoomID,
			&i.ReportedBy,
			&i.Issue,
			&i.Priority,
			&i.Status,
			&i.ResolvedAt,
			&i.Notes,
			&i.CreatedAt,
			&i.RoomNumber,
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
