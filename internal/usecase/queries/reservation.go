package queries

//go:generate mockgen -destination=../../../tests/mock/queries/reservation.go -package=queriesmock . ReservationQueries

import (
	"context"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errs.New("invalid cursor")

type ReservationQueries interface {
	GetByID(ctx context.Context, principal auth.Principal, id uuid.UUID) (*ReservationView, error)
	// GetByIDSystem skips the access check; it serves read-after-write and replays.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListMine(ctx context.Context, principal auth.Principal, after string, limit int) (*ReservationPage, error)
	ListIncoming(ctx context.Context, principal auth.Principal, after string, limit int) (*ReservationPage, error)
	Availability(ctx context.Context, screeningID uuid.UUID) (*AvailabilityView, error)
}

type ReservationViewStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByUserIDFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindByUserIDKeyset(ctx context.Context, userID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindAllFirstPage(ctx context.Context, limit int32) ([]*ReservationListItem, error)
	FindAllKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ReservationListItem, error)
}

type AvailabilityStore interface {
	FindAvailability(ctx context.Context, screeningID uuid.UUID) (*AvailabilityView, error)
}

// AvailabilityCache is best effort: a miss or a failed write only costs a
// database read. Get reports the version seen on a miss; Set stores the view
// only if no Invalidate happened since.
type AvailabilityCache interface {
	Get(ctx context.Context, screeningID uuid.UUID) (*AvailabilityView, CacheVersion, bool)
	Set(ctx context.Context, view *AvailabilityView, version CacheVersion)
	Invalidate(ctx context.Context, screeningID uuid.UUID)
}

type reservationQueriesImpl struct {
	reservations ReservationViewStore
	availability AvailabilityStore
	cache        AvailabilityCache
}

func NewReservationQueries(reservations ReservationViewStore, availability AvailabilityStore, cache AvailabilityCache) ReservationQueries {
	return &reservationQueriesImpl{
		reservations: reservations,
		availability: availability,
		cache:        cache,
	}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, principal auth.Principal, id uuid.UUID) (*ReservationView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanAccess(principal, view.UserID, auth.Staff...) {
		return nil, shared.ErrForbidden
	}

	return view, nil
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	view, err := q.reservations.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, shared.ErrReservationNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListMine(ctx context.Context, principal auth.Principal, after string, limit int) (*ReservationPage, error) {
	return q.list(after, limit,
		func(n int32) ([]*ReservationListItem, error) {
			return q.reservations.FindByUserIDFirstPage(ctx, principal.ID, n)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, n int32) ([]*ReservationListItem, error) {
			return q.reservations.FindByUserIDKeyset(ctx, principal.ID, lastCreatedAt, lastID, n)
		},
	)
}

func (q *reservationQueriesImpl) ListIncoming(ctx context.Context, principal auth.Principal, after string, limit int) (*ReservationPage, error) {
	if !auth.Allows(principal, auth.Staff...) {
		return nil, shared.ErrForbidden
	}

	return q.list(after, limit,
		func(n int32) ([]*ReservationListItem, error) {
			return q.reservations.FindAllFirstPage(ctx, n)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, n int32) ([]*ReservationListItem, error) {
			return q.reservations.FindAllKeyset(ctx, lastCreatedAt, lastID, n)
		},
	)
}

// list fetches one row past the page to decide whether a next cursor exists.
func (q *reservationQueriesImpl) list(
	after string,
	limit int,
	first func(n int32) ([]*ReservationListItem, error),
	keyset func(lastCreatedAt time.Time, lastID uuid.UUID, n int32) ([]*ReservationListItem, error),
) (*ReservationPage, error) {
	limit = ValidateLimit(limit)
	fetch := int32(limit + 1) // #nosec G115 -- bounded by MaxListLimit

	var (
		items []*ReservationListItem
		err   error
	)
	if after == "" {
		items, err = first(fetch)
	} else {
		lastCreatedAt, lastID, decodeErr := DecodeAfterCursor(after)
		if decodeErr != nil {
			return nil, errs.Mark(decodeErr, ErrInvalidCursor)
		}
		items, err = keyset(lastCreatedAt, lastID, fetch)
	}
	if err != nil {
		return nil, err
	}

	page := &ReservationPage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		last := page.Items[limit-1]
		next := EncodeAfterCursor(last.CreatedAt, last.ID)
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []*ReservationListItem{}
	}
	return page, nil
}

func (q *reservationQueriesImpl) Availability(ctx context.Context, screeningID uuid.UUID) (*AvailabilityView, error) {
	// version must be taken before the store read
	view, version, ok := q.cache.Get(ctx, screeningID)
	if ok {
		return view, nil
	}

	view, err := q.availability.FindAvailability(ctx, screeningID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, shared.ErrScreeningNotFound
		}
		return nil, err
	}

	q.cache.Set(ctx, view, version)
	return view, nil
}
