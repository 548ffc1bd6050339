package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const staffColumns = `id, full_name, email, hashed_password, position, phone, is_active, hire_date, created_at`

func scanStaff(row pgx.Row) (Staff, error) {
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.FullName,
		&i.Email,
		&i.HashedPassword,
		&i.Position,
		&i.Phone,
		&i.IsActive,
		&i.HireDate,
		&i.CreatedAt,
	)
	return i, err
}

const createStaff = `-- name: CreateStaff :one
INSERT INTO staff (full_name, email, hashed_password, position, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + staffColumns

type CreateStaffParams struct {
	FullName       string        `json:"full_name"`
	Email          string        `json:"email"`
	HashedPassword string        `json:"hashed_password"`
	Position       StaffPosition `json:"position"`
	Phone          pgtype.Text   `json:"phone"`
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, createStaff,
		arg.FullName,
		arg.Email,
		arg.HashedPassword,
		string(arg.Position),
		arg.Phone,
	)
	return scanStaff(row)
}

const getStaff = `-- name: GetStaff :one
SELECT ` + staffColumns + ` FROM staff WHERE id = $1 AND is_active
`

func (q *Queries) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, getStaff, id))
}

const getStaffByEmail = `-- name: GetStaffByEmail :one
SELECT ` + staffColumns + ` FROM staff WHERE email = $1 AND is_active
`

func (q *Queries) GetStaffByEmail(ctx context.Context, email string) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, getStaffByEmail, email))
}

const listStaff = `-- name: ListStaff :many
SELECT ` + staffColumns + ` FROM staff
WHERE ($1::text = '' OR position = $1)
ORDER BY full_name
`

func (q *Queries) ListStaff(ctx context.Context, position string) ([]Staff, error) {
	rows, err := q.db.Query(ctx, listStaff, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Staff{}
	for rows.Next() {
		i, err := scanStaff(rows)
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

const deactivateStaff = `-- name: DeactivateStaff :exec
UPDATE staff SET is_active = FALSE WHERE id = $1
`

func (q *Queries) DeactivateStaff(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deactivateStaff, id)
	return err
}
