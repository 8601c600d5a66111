package commands

//go:generate mockgen -destination=../../../tests/mock/commands/reservation.go -package=commandsmock . ReservationCommands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSeatConflict          = errs.New("one or more seats already booked")
	ErrIdempotencyConflict   = errs.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress = errs.New("idempotency in progress")
)

const (
	createEndpoint = "POST /api/reservations"
	idempotencyTTL = 24 * time.Hour
)

type CreateReservationResult struct {
	Reservation *queries.ReservationView
	IsReplayed  bool
}

type ReservationCommands interface {
	Create(ctx context.Context, principal auth.Principal, req reqdto.CreateReservationRequest, idempotencyKey *uuid.UUID) (*CreateReservationResult, error)
	Cancel(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)
	ConfirmPayment(ctx context.Context, principal auth.Principal, id uuid.UUID, method string) (*queries.ReservationView, error)
	Reschedule(ctx context.Context, principal auth.Principal, id uuid.UUID, req reqdto.RescheduleRequest) (*queries.ReservationView, error)
	Approve(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)
	Decline(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)
	AdminConfirm(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)
	AdminComplete(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)
	AdminDelete(ctx context.Context, principal auth.Principal, id uuid.UUID) error
	CompletePast(ctx context.Context, principal auth.Principal) (int, error)
}

type reservationCommandsImpl struct {
	uow                shared.UnitOfWork
	reservationQueries queries.ReservationQueries
	availability       AvailabilityInvalidator
	clock              clock.Clock
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	reservationQueries queries.ReservationQueries,
	availability AvailabilityInvalidator,
	clock clock.Clock,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:                uow,
		reservationQueries: reservationQueries,
		availability:       availability,
		clock:              clock,
	}
}

// transition describes one single-unit state change on an existing reservation.
type transition struct {
	roles    []user.Role
	ownerOK  bool
	releases bool
	topic    string
	method   string
	apply    func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, now time.Time) error
}

func (r *reservationCommandsImpl) Create(
	ctx context.Context,
	principal auth.Principal,
	req reqdto.CreateReservationRequest,
	idempotencyKey *uuid.UUID,
) (*CreateReservationResult, error) {
	seats, note, err := req.ToDomain()
	if err != nil {
		return nil, err
	}

	requestHash := r.calculateRequestHash(req)

	var (
		createdID  uuid.UUID
		replayedID *uuid.UUID
	)
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if idempotencyKey != nil {
			replay, err := r.claimIdempotencyKey(ctx, tx, *idempotencyKey, principal.ID, requestHash)
			if err != nil {
				return err
			}
			if replay != nil {
				replayedID = replay
				return nil
			}
		}

		res, err := r.book(ctx, tx, principal.ID, req.ScreeningID, seats, note)
		if err != nil {
			return err
		}
		createdID = res.ID()

		if idempotencyKey != nil {
			return tx.Idempotency().UpdateStatusCompleted(ctx, *idempotencyKey, principal.ID, r.calculateIDHash(createdID), createdID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayedID != nil {
		view, err := r.reservationQueries.GetByIDSystem(ctx, *replayedID)
		if err != nil {
			return nil, err
		}
		return &CreateReservationResult{Reservation: view, IsReplayed: true}, nil
	}

	r.invalidate(ctx, req.ScreeningID)

	view, err := r.reservationQueries.GetByIDSystem(ctx, createdID)
	if err != nil {
		return nil, err
	}
	return &CreateReservationResult{Reservation: view}, nil
}

// claimIdempotencyKey returns the stored reservation id when the key was
// already completed for the same request.
func (r *reservationCommandsImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key, userID uuid.UUID,
	requestHash string,
) (*uuid.UUID, error) {
	claimed, err := tx.Idempotency().TryInsert(ctx, key, userID, createEndpoint, requestHash, r.clock.Now().Add(idempotencyTTL))
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, nil
	}

	existing, err := tx.Reads().IdempotencyByKey(ctx, key, userID)
	if err != nil {
		return nil, err
	}

	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyConflict
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultReservationID == nil {
			return nil, errs.New("completed request missing result reservation ID")
		}
		return existing.ResultReservationID, nil
	case shared.IdempotencyStatusProcessing:
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

// book is the only path that writes tickets for a new reservation.
func (r *reservationCommandsImpl) book(
	ctx context.Context,
	tx shared.Tx,
	userID, screeningID uuid.UUID,
	seats []reservation.Seat,
	note reservation.Note,
) (*reservation.Reservation, error) {
	scr, err := tx.Reads().ScreeningByID(ctx, screeningID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, shared.ErrScreeningNotFound
		}
		return nil, err
	}

	now := r.clock.Now()
	res, err := reservation.NewReservation(userID, scr, seats, note, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Reservations().Create(ctx, res); err != nil {
		return nil, err
	}

	result, err := tx.Tickets().Insert(ctx, res.ID(), res.ScreeningID(), res.Tickets())
	if err != nil {
		return nil, err
	}
	if result == shared.ConflictDetected {
		return nil, ErrSeatConflict
	}

	if err := enqueueEvent(ctx, tx, TopicReservationCreated, newReservationEvent(res, res.Seats(), now)); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *reservationCommandsImpl) Cancel(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error) {
	return r.run(ctx, principal, id, transition{
		roles:    auth.Staff,
		ownerOK:  true,
		releases: true,
		topic:    TopicReservationCanceled,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Cancel(now)
		},
	})
}

func (r *reservationCommandsImpl) ConfirmPayment(ctx context.Context, principal auth.Principal, id uuid.UUID, method string) (*queries.ReservationView, error) {
	if method == "" {
		method = reqdto.DefaultPaymentMethod
	}

	return r.run(ctx, principal, id, transition{
		roles:   auth.Staff,
		ownerOK: true,
		topic:   TopicReservationConfirmed,
		method:  method,
		apply: func(ctx context.Context, tx shared.Tx, res *reservation.Reservation, now time.Time) error {
			scr, err := tx.Reads().ScreeningByID(ctx, res.ScreeningID())
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return shared.ErrScreeningNotFound
				}
				return err
			}
			return res.Confirm(now, scr.StartsAt())
		},
	})
}

func (r *reservationCommandsImpl) Approve(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error) {
	return r.run(ctx, principal, id, transition{
		roles: auth.Staff,
		topic: TopicReservationConfirmed,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Approve(now)
		},
	})
}

func (r *reservationCommandsImpl) Decline(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error) {
	return r.run(ctx, principal, id, transition{
		roles:    auth.Staff,
		releases: true,
		topic:    TopicReservationCanceled,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Decline(now)
		},
	})
}

func (r *reservationCommandsImpl) AdminConfirm(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error) {
	return r.run(ctx, principal, id, transition{
		roles: []user.Role{user.RoleAdmin},
		topic: TopicReservationConfirmed,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Approve(now)
		},
	})
}

func (r *reservationCommandsImpl) AdminComplete(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error) {
	return r.run(ctx, principal, id, transition{
		roles: []user.Role{user.RoleAdmin},
		topic: TopicReservationCompleted,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Complete(now)
		},
	})
}

// Reschedule cancels the old reservation and books the new one in two
// separate units. A failed booking leaves the old reservation canceled.
func (r *reservationCommandsImpl) Reschedule(
	ctx context.Context,
	principal auth.Principal,
	id uuid.UUID,
	req reqdto.RescheduleRequest,
) (*queries.ReservationView, error) {
	create := req.AsCreate()
	seats, note, err := create.ToDomain()
	if err != nil {
		return nil, err
	}

	if _, err := r.run(ctx, principal, id, transition{
		roles:    auth.Staff,
		ownerOK:  true,
		releases: true,
		topic:    TopicReservationCanceled,
		apply: func(_ context.Context, _ shared.Tx, res *reservation.Reservation, now time.Time) error {
			return res.Vacate(now)
		},
	}); err != nil {
		return nil, err
	}

	var newID uuid.UUID
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := r.book(ctx, tx, principal.ID, create.ScreeningID, seats, note)
		if err != nil {
			return err
		}
		newID = res.ID()
		return nil
	})
	if err != nil {
		slog.Info("reschedule left the old reservation canceled",
			"reservation_id", id,
			"new_screening_id", create.ScreeningID,
			"error", err.Error())
		return nil, err
	}

	r.invalidate(ctx, create.ScreeningID)

	return r.reservationQueries.GetByIDSystem(ctx, newID)
}

func (r *reservationCommandsImpl) AdminDelete(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	if !auth.Allows(principal, user.RoleAdmin) {
		return shared.ErrForbidden
	}

	var screeningID uuid.UUID
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		screeningID = res.ScreeningID()
		seats := res.Seats()

		if err := tx.Reservations().Delete(ctx, id); err != nil {
			return err
		}
		return enqueueEvent(ctx, tx, TopicReservationDeleted, newReservationEvent(res, seats, r.clock.Now()))
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, screeningID)
	return nil
}

// CompletePast moves every CONFIRMED reservation whose screening has started
// to COMPLETED. Running it twice in a row completes nothing the second time.
func (r *reservationCommandsImpl) CompletePast(ctx context.Context, principal auth.Principal) (int, error) {
	if !auth.Allows(principal, auth.Staff...) {
		return 0, shared.ErrForbidden
	}

	var completed int
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := r.clock.Now()
		rows, err := tx.Reservations().CompletePast(ctx, now)
		if err != nil {
			return err
		}

		for _, row := range rows {
			ev := ReservationEvent{
				ReservationID: row.ID,
				UserID:        row.UserID,
				ScreeningID:   row.ScreeningID,
				Status:        reservation.StatusCompleted.String(),
				Seats:         []EventSeat{},
				OccurredAt:    now,
			}
			if err := enqueueEvent(ctx, tx, TopicReservationCompleted, ev); err != nil {
				return err
			}
		}
		completed = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return completed, nil
}

func (r *reservationCommandsImpl) run(
	ctx context.Context,
	principal auth.Principal,
	id uuid.UUID,
	t transition,
) (*queries.ReservationView, error) {
	if !t.ownerOK && !auth.Allows(principal, t.roles...) {
		return nil, shared.ErrForbidden
	}

	var screeningID uuid.UUID
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if t.ownerOK && !auth.CanAccess(principal, res.UserID(), t.roles...) {
			return shared.ErrForbidden
		}

		screeningID = res.ScreeningID()
		seats := res.Seats()
		now := r.clock.Now()

		if err := t.apply(ctx, tx, res, now); err != nil {
			return err
		}

		if t.releases {
			if _, err := tx.Tickets().Release(ctx, res.ID()); err != nil {
				return err
			}
		}

		if err := tx.Reservations().UpdateStatus(ctx, res); err != nil {
			return err
		}

		ev := newReservationEvent(res, seats, now)
		ev.Method = t.method
		return enqueueEvent(ctx, tx, t.topic, ev)
	})
	if err != nil {
		return nil, err
	}

	if t.releases {
		r.invalidate(ctx, screeningID)
	}

	return r.reservationQueries.GetByIDSystem(ctx, id)
}

func (r *reservationCommandsImpl) load(ctx context.Context, tx shared.Tx, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := tx.Reads().ReservationByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, shared.ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// invalidate runs after commit, so a caller that has gone away must not stop it.
func (r *reservationCommandsImpl) invalidate(ctx context.Context, screeningID uuid.UUID) {
	r.availability.Invalidate(context.WithoutCancel(ctx), screeningID)
}

func (r *reservationCommandsImpl) calculateRequestHash(req reqdto.CreateReservationRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (r *reservationCommandsImpl) calculateIDHash(id uuid.UUID) string {
	hash := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(hash[:])
}
