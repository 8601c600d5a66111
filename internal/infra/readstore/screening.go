package readstore

import (
	"context"

	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/pkg/pgconv"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type ScreeningReadQueries interface {
	GetScreeningWithHall(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.GetScreeningWithHallRow, error)
	GetTakenSeatsByScreening(ctx context.Context, db sqlc.DBTX, screeningID uuid.UUID) ([]sqlc.GetTakenSeatsByScreeningRow, error)
}

// ScreeningReadStore reads reference data only; the core never writes
// screenings or halls.
type ScreeningReadStore struct {
	queries ScreeningReadQueries
	db      sqlc.DBTX
}

func NewScreeningReadStore(queries ScreeningReadQueries, db sqlc.DBTX) *ScreeningReadStore {
	return &ScreeningReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ScreeningReadStore) FindByID(ctx context.Context, id uuid.UUID) (*screening.Screening, error) {
	row, err := r.queries.GetScreeningWithHall(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("screening not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find screening", err)
	}

	hall, err := screening.NewHall(row.HallID, row.HallName, int(row.HallRows), int(row.HallCols))
	if err != nil {
		return nil, infra.WrapRepoErr("invalid hall reference data", err, infra.KindDBFailure)
	}

	var providerID uuid.UUID
	if p := pgconv.UUIDPtrFromPgtype(row.ProviderID); p != nil {
		providerID = *p
	}

	return screening.NewScreening(row.ID, row.MovieID, providerID, pgconv.TimeFromPgtype(row.StartsAt), hall), nil
}

func (r *ScreeningReadStore) FindAvailability(ctx context.Context, screeningID uuid.UUID) (*queries.AvailabilityView, error) {
	scr, err := r.FindByID(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	rows, err := r.queries.GetTakenSeatsByScreening(ctx, r.db, screeningID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find taken seats", err)
	}

	taken := make([]queries.SeatView, len(rows))
	for i, row := range rows {
		taken[i] = queries.SeatView{SeatRow: int(row.SeatRow), SeatCol: int(row.SeatCol)}
	}

	hall := scr.Hall()
	return &queries.AvailabilityView{
		ScreeningID: scr.ID(),
		HallID:      hall.ID(),
		Rows:        hall.Rows(),
		Cols:        hall.Cols(),
		Taken:       taken,
	}, nil
}
