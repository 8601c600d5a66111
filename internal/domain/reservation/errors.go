package reservation

import (
	"fmt"
	"strings"

	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
)

var (
	ErrInvalidStatus          = errs.New("invalid reservation status")
	ErrInvalidSeat            = errs.New("seat row and col must be at least 1")
	ErrNoSeats                = errs.New("at least one seat is required")
	ErrDuplicateSeat          = errs.New("seat requested more than once")
	ErrNoteTooLong            = errs.New("notes too long")
	ErrSeatOutOfBounds        = errs.New("seat out of hall bounds")
	ErrInvalidTransition      = errs.New("invalid reservation transition")
	ErrCanceledCannotComplete = errs.Mark(errs.New("canceled reservations cannot be completed"), ErrInvalidTransition)
	ErrScreeningStarted       = errs.New("screening already started")
)

// OutOfBoundsError names the first seat that does not fit the hall.
type OutOfBoundsError struct {
	Seat Seat
	Rows int
	Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("seat (%d,%d) out of hall bounds %dx%d", e.Seat.Row(), e.Seat.Col(), e.Rows, e.Cols)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrSeatOutOfBounds
}

// TransitionError is returned when an action is not allowed from the current status.
type TransitionError struct {
	Action   string
	From     Status
	Required []Status
}

func (e *TransitionError) Error() string {
	required := make([]string, len(e.Required))
	for i, s := range e.Required {
		required[i] = s.String()
	}
	return fmt.Sprintf("cannot %s reservation in status %s (requires %s)", e.Action, e.From, strings.Join(required, " or "))
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
