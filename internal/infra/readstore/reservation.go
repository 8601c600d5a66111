package readstore

import (
	"context"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/infra/repository/converter"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/pkg/pgconv"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReservationViewQueries interface {
	GetReservationByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.GetReservationByIDRow, error)
	GetReservationForUpdate(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Reservations, error)
	GetReservationsByUserIDFirstPage(ctx context.Context, db sqlc.DBTX, arg sqlc.GetReservationsByUserIDFirstPageParams) ([]sqlc.GetReservationsByUserIDFirstPageRow, error)
	GetReservationsByUserIDKeyset(ctx context.Context, db sqlc.DBTX, arg sqlc.GetReservationsByUserIDKeysetParams) ([]sqlc.GetReservationsByUserIDKeysetRow, error)
	GetReservationsFirstPage(ctx context.Context, db sqlc.DBTX, limit int32) ([]sqlc.GetReservationsFirstPageRow, error)
	GetReservationsKeyset(ctx context.Context, db sqlc.DBTX, arg sqlc.GetReservationsKeysetParams) ([]sqlc.GetReservationsKeysetRow, error)
	GetTicketsByReservationIDs(ctx context.Context, db sqlc.DBTX, reservationIds []uuid.UUID) ([]sqlc.GetTicketsByReservationIDsRow, error)
}

type ReservationReadStore struct {
	queries ReservationViewQueries
	db      sqlc.DBTX
}

func NewReservationReadStore(queries ReservationViewQueries, db sqlc.DBTX) *ReservationReadStore {
	return &ReservationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row, err := r.queries.GetReservationByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	tickets, err := r.ticketsByReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	return &queries.ReservationView{
		ID:          row.ID,
		UserID:      row.UserID,
		UserEmail:   row.UserEmail,
		ScreeningID: row.ScreeningID,
		MovieTitle:  row.MovieTitle,
		StartsAt:    pgconv.TimeFromPgtype(row.StartsAt),
		Status:      row.Status,
		Notes:       row.Notes,
		Tickets:     toTicketViews(tickets[id]),
		CreatedAt:   pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:   pgconv.TimeFromPgtype(row.UpdatedAt),
	}, nil
}

// FindForUpdate loads the aggregate with its tickets and locks the row until
// the surrounding transaction ends.
func (r *ReservationReadStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row, err := r.queries.GetReservationForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation", err)
	}

	tickets, err := r.queries.GetTicketsByReservationIDs(ctx, r.db, []uuid.UUID{id})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find tickets", err)
	}

	res, err := converter.ReservationFromInfra(row, tickets)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid reservation row", err, infra.KindDBFailure)
	}
	return res, nil
}

func (r *ReservationReadStore) FindByUserIDFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	params := sqlc.GetReservationsByUserIDFirstPageParams{
		UserID: userID,
		Limit:  limit,
	}

	rows, err := r.queries.GetReservationsByUserIDFirstPage(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations first page", err)
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		items[i] = listItem(row.ID, row.UserID, row.ScreeningID, row.MovieTitle, row.Status, row.StartsAt, row.CreatedAt)
	}
	return r.attachTickets(ctx, items)
}

func (r *ReservationReadStore) FindByUserIDKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	params := sqlc.GetReservationsByUserIDKeysetParams{
		UserID:    userID,
		CreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		ID:        lastID,
		Limit:     limit,
	}

	rows, err := r.queries.GetReservationsByUserIDKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations keyset", err)
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		items[i] = listItem(row.ID, row.UserID, row.ScreeningID, row.MovieTitle, row.Status, row.StartsAt, row.CreatedAt)
	}
	return r.attachTickets(ctx, items)
}

func (r *ReservationReadStore) FindAllFirstPage(ctx context.Context, limit int32) ([]*queries.ReservationListItem, error) {
	rows, err := r.queries.GetReservationsFirstPage(ctx, r.db, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find incoming reservations first page", err)
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		items[i] = listItem(row.ID, row.UserID, row.ScreeningID, row.MovieTitle, row.Status, row.StartsAt, row.CreatedAt)
	}
	return r.attachTickets(ctx, items)
}

func (r *ReservationReadStore) FindAllKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	params := sqlc.GetReservationsKeysetParams{
		CreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		ID:        lastID,
		Limit:     limit,
	}

	rows, err := r.queries.GetReservationsKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find incoming reservations keyset", err)
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		items[i] = listItem(row.ID, row.UserID, row.ScreeningID, row.MovieTitle, row.Status, row.StartsAt, row.CreatedAt)
	}
	return r.attachTickets(ctx, items)
}

// attachTickets loads the tickets of a whole page with one query.
func (r *ReservationReadStore) attachTickets(ctx context.Context, items []*queries.ReservationListItem) ([]*queries.ReservationListItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	byReservation, err := r.ticketsByReservation(ctx, ids...)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		item.Tickets = toTicketViews(byReservation[item.ID])
	}
	return items, nil
}

func (r *ReservationReadStore) ticketsByReservation(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID][]sqlc.GetTicketsByReservationIDsRow, error) {
	rows, err := r.queries.GetTicketsByReservationIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find tickets", err)
	}

	grouped := make(map[uuid.UUID][]sqlc.GetTicketsByReservationIDsRow, len(ids))
	for _, row := range rows {
		grouped[row.ReservationID] = append(grouped[row.ReservationID], row)
	}
	return grouped, nil
}

func listItem(id, userID, screeningID uuid.UUID, title, status string, startsAt, createdAt pgtype.Timestamptz) *queries.ReservationListItem {
	return &queries.ReservationListItem{
		ID:          id,
		UserID:      userID,
		ScreeningID: screeningID,
		MovieTitle:  title,
		StartsAt:    pgconv.TimeFromPgtype(startsAt),
		Status:      status,
		CreatedAt:   pgconv.TimeFromPgtype(createdAt),
	}
}

func toTicketViews(rows []sqlc.GetTicketsByReservationIDsRow) []queries.TicketView {
	views := make([]queries.TicketView, len(rows))
	for i, row := range rows {
		views[i] = queries.TicketView{
			ID:      row.ID,
			SeatRow: int(row.SeatRow),
			SeatCol: int(row.SeatCol),
		}
	}
	return views
}
