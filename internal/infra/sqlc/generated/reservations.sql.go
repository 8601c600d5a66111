package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const completePastReservations = `-- name: CompletePastReservations :many
UPDATE reservations r
SET status = 'COMPLETED', updated_at = $1
FROM screenings s
WHERE s.id = r.screening_id
  AND r.status = 'CONFIRMED'
  AND s.starts_at <= $1
RETURNING r.id, r.user_id, r.screening_id
`

type CompletePastReservationsRow struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ScreeningID uuid.UUID `json:"screening_id"`
}

func (q *Queries) CompletePastReservations(ctx context.Context, db DBTX, now pgtype.Timestamptz) ([]CompletePastReservationsRow, error) {
	rows, err := db.Query(ctx, completePastReservations, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CompletePastReservationsRow
	for rows.Next() {
		var i CompletePastReservationsRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.ScreeningID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReservation = `-- name: CreateReservation :exec
INSERT INTO reservations (id, user_id, screening_id, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateReservationParams struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	Status      string             `json:"status"`
	Notes       string             `json:"notes"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateReservation(ctx context.Context, db DBTX, arg CreateReservationParams) error {
	_, err := db.Exec(ctx, createReservation,
		arg.ID,
		arg.UserID,
		arg.ScreeningID,
		arg.Status,
		arg.Notes,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteReservation = `-- name: DeleteReservation :execrows
DELETE FROM reservations
WHERE id = $1
`

func (q *Queries) DeleteReservation(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	result, err := db.Exec(ctx, deleteReservation, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getReservationByID = `-- name: GetReservationByID :one
SELECT r.id, r.user_id, u.email AS user_email, r.screening_id, s.starts_at, m.title AS movie_title,
       r.status, r.notes, r.created_at, r.updated_at
FROM reservations r
JOIN users u ON u.id = r.user_id
JOIN screenings s ON s.id = r.screening_id
JOIN movies m ON m.id = s.movie_id
WHERE r.id = $1
`

type GetReservationByIDRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	UserEmail   string             `json:"user_email"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	MovieTitle  string             `json:"movie_title"`
	Status      string             `json:"status"`
	Notes       string             `json:"notes"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) GetReservationByID(ctx context.Context, db DBTX, id uuid.UUID) (GetReservationByIDRow, error) {
	row := db.QueryRow(ctx, getReservationByID, id)
	var i GetReservationByIDRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.UserEmail,
		&i.ScreeningID,
		&i.StartsAt,
		&i.MovieTitle,
		&i.Status,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getReservationForUpdate = `-- name: GetReservationForUpdate :one
SELECT id, user_id, screening_id, status, notes, created_at, updated_at FROM reservations
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetReservationForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Reservations, error) {
	row := db.QueryRow(ctx, getReservationForUpdate, id)
	var i Reservations
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ScreeningID,
		&i.Status,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getReservationsByUserIDFirstPage = `-- name: GetReservationsByUserIDFirstPage :many
SELECT r.id, r.user_id, r.screening_id, s.starts_at, m.title AS movie_title, r.status, r.created_at
FROM reservations r
JOIN screenings s ON s.id = r.screening_id
JOIN movies m ON m.id = s.movie_id
WHERE r.user_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2
`

type GetReservationsByUserIDFirstPageParams struct {
	UserID uuid.UUID `json:"user_id"`
	Limit  int32     `json:"limit"`
}

type GetReservationsByUserIDFirstPageRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	MovieTitle  string             `json:"movie_title"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetReservationsByUserIDFirstPage(ctx context.Context, db DBTX, arg GetReservationsByUserIDFirstPageParams) ([]GetReservationsByUserIDFirstPageRow, error) {
	rows, err := db.Query(ctx, getReservationsByUserIDFirstPage, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReservationsByUserIDFirstPageRow
	for rows.Next() {
		var i GetReservationsByUserIDFirstPageRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ScreeningID,
			&i.StartsAt,
			&i.MovieTitle,
			&i.Status,
			&i.CreatedAt,
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

const getReservationsByUserIDKeyset = `-- name: GetReservationsByUserIDKeyset :many
SELECT r.id, r.user_id, r.screening_id, s.starts_at, m.title AS movie_title, r.status, r.created_at
FROM reservations r
JOIN screenings s ON s.id = r.screening_id
JOIN movies m ON m.id = s.movie_id
WHERE r.user_id = $1
  AND (r.created_at, r.id) < ($3::timestamptz, $4::uuid)
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2
`

type GetReservationsByUserIDKeysetParams struct {
	UserID    uuid.UUID          `json:"user_id"`
	Limit     int32              `json:"limit"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	ID        uuid.UUID          `json:"id"`
}

type GetReservationsByUserIDKeysetRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	MovieTitle  string             `json:"movie_title"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetReservationsByUserIDKeyset(ctx context.Context, db DBTX, arg GetReservationsByUserIDKeysetParams) ([]GetReservationsByUserIDKeysetRow, error) {
	rows, err := db.Query(ctx, getReservationsByUserIDKeyset,
		arg.UserID,
		arg.Limit,
		arg.CreatedAt,
		arg.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReservationsByUserIDKeysetRow
	for rows.Next() {
		var i GetReservationsByUserIDKeysetRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ScreeningID,
			&i.StartsAt,
			&i.MovieTitle,
			&i.Status,
			&i.CreatedAt,
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

const getReservationsFirstPage = `-- name: GetReservationsFirstPage :many
SELECT r.id, r.user_id, r.screening_id, s.starts_at, m.title AS movie_title, r.status, r.created_at
FROM reservations r
JOIN screenings s ON s.id = r.screening_id
JOIN movies m ON m.id = s.movie_id
ORDER BY r.created_at DESC, r.id DESC
LIMIT $1
`

type GetReservationsFirstPageRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	MovieTitle  string             `json:"movie_title"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetReservationsFirstPage(ctx context.Context, db DBTX, limit int32) ([]GetReservationsFirstPageRow, error) {
	rows, err := db.Query(ctx, getReservationsFirstPage, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReservationsFirstPageRow
	for rows.Next() {
		var i GetReservationsFirstPageRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ScreeningID,
			&i.StartsAt,
			&i.MovieTitle,
			&i.Status,
			&i.CreatedAt,
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

const getReservationsKeyset = `-- name: GetReservationsKeyset :many
SELECT r.id, r.user_id, r.screening_id, s.starts_at, m.title AS movie_title, r.status, r.created_at
FROM reservations r
JOIN screenings s ON s.id = r.screening_id
JOIN movies m ON m.id = s.movie_id
WHERE (r.created_at, r.id) < ($2::timestamptz, $3::uuid)
ORDER BY r.created_at DESC, r.id DESC
LIMIT $1
`

type GetReservationsKeysetParams struct {
	Limit     int32              `json:"limit"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	ID        uuid.UUID          `json:"id"`
}

type GetReservationsKeysetRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	StartsAt    pgtype.Timestamptz `json:"starts_at"`
	MovieTitle  string             `json:"movie_title"`
	Status      string             `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetReservationsKeyset(ctx context.Context, db DBTX, arg GetReservationsKeysetParams) ([]GetReservationsKeysetRow, error) {
	rows, err := db.Query(ctx, getReservationsKeyset, arg.Limit, arg.CreatedAt, arg.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReservationsKeysetRow
	for rows.Next() {
		var i GetReservationsKeysetRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ScreeningID,
			&i.StartsAt,
			&i.MovieTitle,
			&i.Status,
			&i.CreatedAt,
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

const updateReservationStatus = `-- name: UpdateReservationStatus :execrows
UPDATE reservations
SET status = $2, updated_at = $3
WHERE id = $1
`

type UpdateReservationStatusParams struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateReservationStatus(ctx context.Context, db DBTX, arg UpdateReservationStatusParams) (int64, error) {
	result, err := db.Exec(ctx, updateReservationStatus, arg.ID, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
