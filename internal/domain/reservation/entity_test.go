//go:build unit

package reservation_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

func newScreening(t *testing.T, rows, cols int, startsAt time.Time) *screening.Screening {
	t.Helper()
	hall, err := screening.NewHall(uuid.New(), "Hall 1", rows, cols)
	require.NoError(t, err)
	return screening.NewScreening(uuid.New(), uuid.New(), uuid.New(), startsAt, hall)
}

func seats(t *testing.T, pairs ...[2]int) []reservation.Seat {
	t.Helper()
	out := make([]reservation.Seat, 0, len(pairs))
	for _, p := range pairs {
		s, err := reservation.NewSeat(p[0], p[1])
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func pending(t *testing.T) *reservation.Reservation {
	t.Helper()
	scr := newScreening(t, 5, 5, now.Add(24*time.Hour))
	res, err := reservation.NewReservation(uuid.New(), scr, seats(t, [2]int{1, 1}, [2]int{1, 2}), reservation.Note{}, now)
	require.NoError(t, err)
	return res
}

func TestNewReservation(t *testing.T) {
	scr := newScreening(t, 3, 4, now.Add(time.Hour))
	userID := uuid.New()

	t.Run("creates a pending reservation with one ticket per seat", func(t *testing.T) {
		note, err := reservation.NewNote("  aisle please  ")
		require.NoError(t, err)

		res, err := reservation.NewReservation(userID, scr, seats(t, [2]int{3, 4}, [2]int{1, 1}), note, now)
		require.NoError(t, err)

		assert.Equal(t, reservation.StatusPending, res.Status())
		assert.Equal(t, scr.ID(), res.ScreeningID())
		assert.True(t, res.IsOwnedBy(userID))
		assert.Equal(t, "aisle please", res.Note().Value())
		assert.Equal(t, seats(t, [2]int{3, 4}, [2]int{1, 1}), res.Seats())
		assert.Len(t, res.Tickets(), 2)
		assert.Equal(t, now, res.CreatedAt())
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		_, err := reservation.NewReservation(userID, scr, nil, reservation.Note{}, now)
		assert.ErrorIs(t, err, reservation.ErrNoSeats)
	})

	t.Run("rejects a repeated seat", func(t *testing.T) {
		_, err := reservation.NewReservation(userID, scr, seats(t, [2]int{2, 2}, [2]int{2, 2}), reservation.Note{}, now)
		assert.ErrorIs(t, err, reservation.ErrDuplicateSeat)
	})

	t.Run("reports the first seat outside the hall", func(t *testing.T) {
		_, err := reservation.NewReservation(userID, scr, seats(t, [2]int{1, 1}, [2]int{4, 1}, [2]int{1, 9}), reservation.Note{}, now)
		require.ErrorIs(t, err, reservation.ErrSeatOutOfBounds)

		var oob *reservation.OutOfBoundsError
		require.True(t, errors.As(err, &oob))
		assert.Equal(t, 4, oob.Seat.Row())
		assert.Equal(t, 1, oob.Seat.Col())
		assert.Equal(t, 3, oob.Rows)
		assert.Equal(t, 4, oob.Cols)
	})
}

func TestNewSeatAndNote(t *testing.T) {
	_, err := reservation.NewSeat(0, 1)
	assert.ErrorIs(t, err, reservation.ErrInvalidSeat)
	_, err = reservation.NewSeat(1, -2)
	assert.ErrorIs(t, err, reservation.ErrInvalidSeat)

	_, err = reservation.NewNote(strings.Repeat("é", reservation.MaxNoteLength))
	assert.NoError(t, err)
	_, err = reservation.NewNote(strings.Repeat("a", reservation.MaxNoteLength+1))
	assert.ErrorIs(t, err, reservation.ErrNoteTooLong)
}

func TestReservation_Transitions(t *testing.T) {
	later := now.Add(time.Minute)

	t.Run("confirm moves pending to confirmed and keeps tickets", func(t *testing.T) {
		res := pending(t)
		require.NoError(t, res.Confirm(later, now.Add(time.Hour)))
		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		assert.Len(t, res.Tickets(), 2)
		assert.Equal(t, later, res.UpdatedAt())
	})

	t.Run("confirm is refused once the screening has started", func(t *testing.T) {
		res := pending(t)
		assert.ErrorIs(t, res.Confirm(now, now), reservation.ErrScreeningStarted)
		assert.Equal(t, reservation.StatusPending, res.Status())
	})

	t.Run("confirm twice reports the required status", func(t *testing.T) {
		res := pending(t)
		require.NoError(t, res.Approve(later))

		err := res.Confirm(later, now.Add(time.Hour))
		var te *reservation.TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, reservation.StatusConfirmed, te.From)
		assert.Equal(t, []reservation.Status{reservation.StatusPending}, te.Required)
		assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
	})

	t.Run("cancel releases every ticket", func(t *testing.T) {
		res := pending(t)
		require.NoError(t, res.Cancel(later))
		assert.Equal(t, reservation.StatusCanceled, res.Status())
		assert.Empty(t, res.Tickets())
		assert.Empty(t, res.Seats())
	})

	t.Run("decline and vacate release like cancel", func(t *testing.T) {
		declined := pending(t)
		require.NoError(t, declined.Decline(later))
		assert.Equal(t, reservation.StatusCanceled, declined.Status())
		assert.Empty(t, declined.Tickets())

		vacated := pending(t)
		require.NoError(t, vacated.Approve(later))
		require.NoError(t, vacated.Vacate(later))
		assert.Equal(t, reservation.StatusCanceled, vacated.Status())
	})

	t.Run("terminal statuses accept nothing", func(t *testing.T) {
		res := pending(t)
		require.NoError(t, res.Cancel(later))

		assert.ErrorIs(t, res.Cancel(later), reservation.ErrInvalidTransition)
		assert.ErrorIs(t, res.Approve(later), reservation.ErrInvalidTransition)
		assert.ErrorIs(t, res.Vacate(later), reservation.ErrInvalidTransition)
	})

	t.Run("complete needs confirmed", func(t *testing.T) {
		res := pending(t)
		err := res.Complete(later)
		var te *reservation.TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, []reservation.Status{reservation.StatusConfirmed}, te.Required)

		require.NoError(t, res.Approve(later))
		require.NoError(t, res.Complete(later))
		assert.Equal(t, reservation.StatusCompleted, res.Status())
		assert.Len(t, res.Tickets(), 2)
	})

	t.Run("completing a canceled reservation has its own error", func(t *testing.T) {
		res := pending(t)
		require.NoError(t, res.Cancel(later))

		err := res.Complete(later)
		assert.ErrorIs(t, err, reservation.ErrCanceledCannotComplete)
		assert.True(t, errs.Is(err, reservation.ErrInvalidTransition))
	})
}

func TestNewStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "CONFIRMED", "CANCELED", "COMPLETED"} {
		status, err := reservation.NewStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, status.String())
	}

	_, err := reservation.NewStatus("pending")
	assert.ErrorIs(t, err, reservation.ErrInvalidStatus)

	assert.True(t, reservation.StatusCanceled.IsTerminal())
	assert.True(t, reservation.StatusCompleted.IsTerminal())
	assert.False(t, reservation.StatusConfirmed.IsTerminal())
}
