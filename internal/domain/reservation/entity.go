package reservation

import (
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/screening"

	"github.com/google/uuid"
)

// Reservation owns a set of tickets for one screening. A CANCELED reservation
// owns none; every other status keeps the set fixed at creation.
type Reservation struct {
	id          uuid.UUID
	userID      uuid.UUID
	screeningID uuid.UUID
	status      Status
	note        Note
	tickets     []Ticket
	createdAt   time.Time
	updatedAt   time.Time
}

// NewReservation builds a PENDING reservation after checking every seat
// against the screening's hall.
func NewReservation(userID uuid.UUID, scr *screening.Screening, seats []Seat, note Note, now time.Time) (*Reservation, error) {
	set, err := NewSeatSet(seats)
	if err != nil {
		return nil, err
	}

	hall := scr.Hall()
	tickets := make([]Ticket, 0, len(set))
	for _, s := range set {
		if err := s.Within(hall); err != nil {
			return nil, err
		}
		tickets = append(tickets, NewTicket(s))
	}

	return &Reservation{
		id:          uuid.New(),
		userID:      userID,
		screeningID: scr.ID(),
		status:      StatusPending,
		note:        note,
		tickets:     tickets,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructReservation(
	id, userID, screeningID uuid.UUID,
	status Status,
	note Note,
	tickets []Ticket,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		userID:      userID,
		screeningID: screeningID,
		status:      status,
		note:        note,
		tickets:     tickets,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Confirm is the payment stand-in. It needs PENDING and a screening that has
// not started yet.
func (r *Reservation) Confirm(now, startsAt time.Time) error {
	if r.status != StatusPending {
		return r.transitionError("confirm", StatusPending)
	}
	if !startsAt.UTC().After(now.UTC()) {
		return ErrScreeningStarted
	}
	r.moveTo(StatusConfirmed, now)
	return nil
}

func (r *Reservation) Approve(now time.Time) error {
	if r.status != StatusPending {
		return r.transitionError("approve", StatusPending)
	}
	r.moveTo(StatusConfirmed, now)
	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	return r.release("cancel", now)
}

func (r *Reservation) Decline(now time.Time) error {
	return r.release("decline", now)
}

// Vacate cancels the reservation as the first half of a reschedule.
func (r *Reservation) Vacate(now time.Time) error {
	return r.release("reschedule", now)
}

func (r *Reservation) Complete(now time.Time) error {
	switch r.status {
	case StatusConfirmed:
		r.moveTo(StatusCompleted, now)
		return nil
	case StatusCanceled:
		return ErrCanceledCannotComplete
	default:
		return r.transitionError("complete", StatusConfirmed)
	}
}

func (r *Reservation) release(action string, now time.Time) error {
	if r.status.IsTerminal() {
		return r.transitionError(action, StatusPending, StatusConfirmed)
	}
	r.tickets = nil
	r.moveTo(StatusCanceled, now)
	return nil
}

func (r *Reservation) moveTo(status Status, now time.Time) {
	r.status = status
	r.updatedAt = now
}

func (r *Reservation) transitionError(action string, required ...Status) error {
	return &TransitionError{Action: action, From: r.status, Required: required}
}

func (r *Reservation) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}

func (r *Reservation) Seats() []Seat {
	seats := make([]Seat, len(r.tickets))
	for i, t := range r.tickets {
		seats[i] = t.Seat()
	}
	return seats
}

func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) UserID() uuid.UUID      { return r.userID }
func (r *Reservation) ScreeningID() uuid.UUID { return r.screeningID }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) Note() Note             { return r.note }
func (r *Reservation) Tickets() []Ticket      { return r.tickets }
func (r *Reservation) CreatedAt() time.Time   { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time   { return r.updatedAt }
