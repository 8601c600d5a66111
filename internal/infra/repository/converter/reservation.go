package converter

import (
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/pkg/pgconv"

	"github.com/google/uuid"
)

func ReservationToInfra(res *reservation.Reservation) sqlc.CreateReservationParams {
	return sqlc.CreateReservationParams{
		ID:          res.ID(),
		UserID:      res.UserID(),
		ScreeningID: res.ScreeningID(),
		Status:      res.Status().String(),
		Notes:       res.Note().Value(),
		CreatedAt:   pgconv.TimeToPgtype(res.CreatedAt()),
		UpdatedAt:   pgconv.TimeToPgtype(res.UpdatedAt()),
	}
}

// TicketsToInsertParams lays the ticket set out as parallel arrays for a
// single unnest insert.
func TicketsToInsertParams(reservationID, screeningID uuid.UUID, tickets []reservation.Ticket) sqlc.InsertTicketsParams {
	params := sqlc.InsertTicketsParams{
		Ids:           make([]uuid.UUID, len(tickets)),
		ReservationID: reservationID,
		ScreeningID:   screeningID,
		SeatRows:      make([]int32, len(tickets)),
		SeatCols:      make([]int32, len(tickets)),
	}
	for i, t := range tickets {
		params.Ids[i] = t.ID()
		params.SeatRows[i] = pgconv.IntToInt32(t.Seat().Row())
		params.SeatCols[i] = pgconv.IntToInt32(t.Seat().Col())
	}
	return params
}

func ReservationFromInfra(row sqlc.Reservations, tickets []sqlc.GetTicketsByReservationIDsRow) (*reservation.Reservation, error) {
	status, err := reservation.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}
	note, err := reservation.NewNote(row.Notes)
	if err != nil {
		return nil, err
	}

	domainTickets := make([]reservation.Ticket, 0, len(tickets))
	for _, t := range tickets {
		domainTickets = append(domainTickets, reservation.ReconstructTicket(t.ID, int(t.SeatRow), int(t.SeatCol)))
	}

	return reservation.ReconstructReservation(
		row.ID,
		row.UserID,
		row.ScreeningID,
		status,
		note,
		domainTickets,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}
