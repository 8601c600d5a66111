package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getScreeningWithHall = `-- name: GetScreeningWithHall :one
SELECT s.id, s.movie_id, s.provider_id, s.starts_at,
       h.id AS hall_id, h.name AS hall_name, h.rows AS hall_rows, h.cols AS hall_cols
FROM screenings s
JOIN halls h ON h.id = s.hall_id
WHERE s.id = $1
`

type GetScreeningWithHallRow struct {
	ID         uuid.UUID          `json:"id"`
	MovieID    uuid.UUID          `json:"movie_id"`
	ProviderID pgtype.UUID        `json:"provider_id"`
	StartsAt   pgtype.Timestamptz `json:"starts_at"`
	HallID     uuid.UUID          `json:"hall_id"`
	HallName   string             `json:"hall_name"`
	HallRows   int32              `json:"hall_rows"`
	HallCols   int32              `json:"hall_cols"`
}

func (q *Queries) GetScreeningWithHall(ctx context.Context, db DBTX, id uuid.UUID) (GetScreeningWithHallRow, error) {
	row := db.QueryRow(ctx, getScreeningWithHall, id)
	var i GetScreeningWithHallRow
	err := row.Scan(
		&i.ID,
		&i.MovieID,
		&i.ProviderID,
		&i.StartsAt,
		&i.HallID,
		&i.HallName,
		&i.HallRows,
		&i.HallCols,
	)
	return i, err
}

const getTakenSeatsByScreening = `-- name: GetTakenSeatsByScreening :many
SELECT seat_row, seat_col
FROM reservation_tickets
WHERE screening_id = $1
ORDER BY seat_row, seat_col
`

type GetTakenSeatsByScreeningRow struct {
	SeatRow int32 `json:"seat_row"`
	SeatCol int32 `json:"seat_col"`
}

func (q *Queries) GetTakenSeatsByScreening(ctx context.Context, db DBTX, screeningID uuid.UUID) ([]GetTakenSeatsByScreeningRow, error) {
	rows, err := db.Query(ctx, getTakenSeatsByScreening, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetTakenSeatsByScreeningRow
	for rows.Next() {
		var i GetTakenSeatsByScreeningRow
		if err := rows.Scan(&i.SeatRow, &i.SeatCol); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
