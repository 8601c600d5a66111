package repository

import (
	"context"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/infra/repository/converter"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

// SeatConstraint is the unique index that makes double booking impossible.
const SeatConstraint = "uq_screening_seat"

type TicketWriteQueries interface {
	InsertTickets(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertTicketsParams) error
	DeleteTicketsByReservation(ctx context.Context, db sqlc.DBTX, reservationID uuid.UUID) (int64, error)
}

type TicketRepository struct {
	queries TicketWriteQueries
	db      sqlc.DBTX
}

func NewTicketRepository(queries TicketWriteQueries, db sqlc.DBTX) *TicketRepository {
	return &TicketRepository{
		queries: queries,
		db:      db,
	}
}

// Insert writes all tickets in one statement. A violation of the seat index
// is reported as ConflictDetected rather than an error; the caller must roll
// back since the transaction is aborted at that point.
func (r *TicketRepository) Insert(ctx context.Context, reservationID, screeningID uuid.UUID, tickets []reservation.Ticket) (shared.CommitResult, error) {
	params := converter.TicketsToInsertParams(reservationID, screeningID, tickets)

	err := r.queries.InsertTickets(ctx, r.db, params)
	if err != nil {
		if infra.IsUniqueViolation(err, SeatConstraint) {
			return shared.ConflictDetected, nil
		}
		return shared.ConflictDetected, infra.WrapRepoErr("failed to insert tickets", err)
	}

	return shared.Committed, nil
}

func (r *TicketRepository) Release(ctx context.Context, reservationID uuid.UUID) (int64, error) {
	n, err := r.queries.DeleteTicketsByReservation(ctx, r.db, reservationID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to release tickets", err)
	}
	return n, nil
}
