package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReadStore serves the query side from the committed state.
type ReadStore struct {
	store *Store
}

func NewReadStore(store *Store) *ReadStore {
	return &ReadStore{store: store}
}

func (r *ReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	row, ok := st.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}

	scr := st.screenings[row.screeningID]
	return &queries.ReservationView{
		ID:          row.id,
		UserID:      row.userID,
		UserEmail:   st.users[row.userID].email,
		ScreeningID: row.screeningID,
		MovieTitle:  scr.movieTitle,
		StartsAt:    scr.screening.StartsAt(),
		Status:      row.status,
		Notes:       row.notes,
		Tickets:     ticketViews(st.ticketsOf(row.id)),
		CreatedAt:   row.createdAt,
		UpdatedAt:   row.updatedAt,
	}, nil
}

func (r *ReadStore) FindByUserIDFirstPage(_ context.Context, userID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return r.page(func(row reservationRow) bool { return row.userID == userID }, nil, limit), nil
}

func (r *ReadStore) FindByUserIDKeyset(_ context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return r.page(func(row reservationRow) bool { return row.userID == userID }, &keyset{lastCreatedAt, lastID}, limit), nil
}

func (r *ReadStore) FindAllFirstPage(_ context.Context, limit int32) ([]*queries.ReservationListItem, error) {
	return r.page(func(reservationRow) bool { return true }, nil, limit), nil
}

func (r *ReadStore) FindAllKeyset(_ context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return r.page(func(reservationRow) bool { return true }, &keyset{lastCreatedAt, lastID}, limit), nil
}

func (r *ReadStore) FindAvailability(_ context.Context, screeningID uuid.UUID) (*queries.AvailabilityView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	scr, ok := st.screenings[screeningID]
	if !ok {
		return nil, infra.WrapRepoErr("screening not found", nil, infra.KindNotFound)
	}

	taken := []queries.SeatView{}
	for k := range st.seats {
		if k.screeningID == screeningID {
			taken = append(taken, queries.SeatView{SeatRow: k.row, SeatCol: k.col})
		}
	}
	sortSeats(taken)

	hall := scr.screening.Hall()
	return &queries.AvailabilityView{
		ScreeningID: screeningID,
		HallID:      hall.ID(),
		Rows:        hall.Rows(),
		Cols:        hall.Cols(),
		Taken:       taken,
	}, nil
}

// FindUserByID satisfies queries.UserReadStore through UserReadStore.
func (r *ReadStore) FindUserByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.store.state.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return &queries.AuthorizedUserView{
		ID:        row.id,
		Email:     row.email,
		Role:      row.role,
		IsActive:  row.isActive,
		LastLogin: row.lastLogin,
		CreatedAt: row.createdAt,
	}, nil
}

// UserReadStore adapts ReadStore to queries.UserReadStore.
type UserReadStore struct {
	*ReadStore
}

func (u UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	return u.FindUserByID(ctx, id)
}

type keyset struct {
	createdAt time.Time
	id        uuid.UUID
}

func (r *ReadStore) page(match func(reservationRow) bool, after *keyset, limit int32) []*queries.ReservationListItem {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	st := r.store.state

	var rows []reservationRow
	for _, row := range st.reservations {
		if !match(row) {
			continue
		}
		if after != nil && !after.isAfter(row) {
			continue
		}
		rows = append(rows, row)
	}
	newestFirst(rows)
	if int32(len(rows)) > limit { // #nosec G115 -- small in-memory sets
		rows = rows[:limit]
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		scr := st.screenings[row.screeningID]
		items[i] = &queries.ReservationListItem{
			ID:          row.id,
			UserID:      row.userID,
			ScreeningID: row.screeningID,
			MovieTitle:  scr.movieTitle,
			StartsAt:    scr.screening.StartsAt(),
			Status:      row.status,
			Tickets:     ticketViews(st.ticketsOf(row.id)),
			CreatedAt:   row.createdAt,
		}
	}
	return items
}

// isAfter reports whether row sorts strictly after the cursor in a
// newest-first listing.
func (k *keyset) isAfter(row reservationRow) bool {
	return after(k.createdAt, k.id, row.createdAt, row.id)
}

func ticketViews(rows []ticketRow) []queries.TicketView {
	views := make([]queries.TicketView, len(rows))
	for i, t := range rows {
		views[i] = queries.TicketView{ID: t.id, SeatRow: t.row, SeatCol: t.col}
	}
	return views
}

func sortSeats(seats []queries.SeatView) {
	slices.SortFunc(seats, func(a, b queries.SeatView) int {
		if c := cmp.Compare(a.SeatRow, b.SeatRow); c != 0 {
			return c
		}
		return cmp.Compare(a.SeatCol, b.SeatCol)
	})
}
