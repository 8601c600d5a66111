package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationConfirmed = "reservation.confirmed"
	TopicReservationCanceled  = "reservation.canceled"
	TopicReservationCompleted = "reservation.completed"
	TopicReservationDeleted   = "reservation.deleted"

	JobKindReservationEvent = "reservation_event"
)

type EventSeat struct {
	SeatRow int `json:"seat_row"`
	SeatCol int `json:"seat_col"`
}

// ReservationEvent is the outbox payload for every lifecycle transition.
type ReservationEvent struct {
	ReservationID uuid.UUID   `json:"reservation_id"`
	UserID        uuid.UUID   `json:"user_id"`
	ScreeningID   uuid.UUID   `json:"screening_id"`
	Status        string      `json:"status"`
	Seats         []EventSeat `json:"seats"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Method        string      `json:"method,omitempty"`
}

func newReservationEvent(res *reservation.Reservation, seats []reservation.Seat, now time.Time) ReservationEvent {
	out := make([]EventSeat, len(seats))
	for i, s := range seats {
		out[i] = EventSeat{SeatRow: s.Row(), SeatCol: s.Col()}
	}
	return ReservationEvent{
		ReservationID: res.ID(),
		UserID:        res.UserID(),
		ScreeningID:   res.ScreeningID(),
		Status:        res.Status().String(),
		Seats:         out,
		OccurredAt:    now,
	}
}

// enqueueEvent writes the event into the outbox of the current unit of work.
func enqueueEvent(ctx context.Context, tx shared.Tx, topic string, ev ReservationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return tx.Notifications().CreateJob(ctx, JobKindReservationEvent, topic, payload, ev.OccurredAt)
}
