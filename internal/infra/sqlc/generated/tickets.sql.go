package sqlc

import (
	"context"

	"github.com/google/uuid"
)

const deleteTicketsByReservation = `-- name: DeleteTicketsByReservation :execrows
DELETE FROM reservation_tickets
WHERE reservation_id = $1
`

func (q *Queries) DeleteTicketsByReservation(ctx context.Context, db DBTX, reservationID uuid.UUID) (int64, error) {
	result, err := db.Exec(ctx, deleteTicketsByReservation, reservationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getTicketsByReservationIDs = `-- name: GetTicketsByReservationIDs :many
SELECT id, reservation_id, seat_row, seat_col
FROM reservation_tickets
WHERE reservation_id = ANY($1::uuid[])
ORDER BY seat_row, seat_col
`

type GetTicketsByReservationIDsRow struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	SeatRow       int32     `json:"seat_row"`
	SeatCol       int32     `json:"seat_col"`
}

func (q *Queries) GetTicketsByReservationIDs(ctx context.Context, db DBTX, reservationIds []uuid.UUID) ([]GetTicketsByReservationIDsRow, error) {
	rows, err := db.Query(ctx, getTicketsByReservationIDs, reservationIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetTicketsByReservationIDsRow
	for rows.Next() {
		var i GetTicketsByReservationIDsRow
		if err := rows.Scan(
			&i.ID,
			&i.ReservationID,
			&i.SeatRow,
			&i.SeatCol,
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

const insertTickets = `-- name: InsertTickets :exec
INSERT INTO reservation_tickets (id, reservation_id, screening_id, seat_row, seat_col)
SELECT unnest($1::uuid[]),
       $2::uuid,
       $3::uuid,
       unnest($4::int[]),
       unnest($5::int[])
`

type InsertTicketsParams struct {
	Ids           []uuid.UUID `json:"ids"`
	ReservationID uuid.UUID   `json:"reservation_id"`
	ScreeningID   uuid.UUID   `json:"screening_id"`
	SeatRows      []int32     `json:"seat_rows"`
	SeatCols      []int32     `json:"seat_cols"`
}

func (q *Queries) InsertTickets(ctx context.Context, db DBTX, arg InsertTicketsParams) error {
	_, err := db.Exec(ctx, insertTickets,
		arg.Ids,
		arg.ReservationID,
		arg.ScreeningID,
		arg.SeatRows,
		arg.SeatCols,
	)
	return err
}
