package api

import (
	"errors"
	"net/http"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/handler/httperr"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errUnauthenticated = errs.New("principal missing from context")
	errInvalidID       = errs.New("invalid id")
)

// respondError maps engine errors onto the HTTP error body. Anything it does
// not recognise is a 500.
func respondError(c *gin.Context, err error) {
	var (
		outOfBounds *reservation.OutOfBoundsError
		transition  *reservation.TransitionError
	)

	switch {
	case errs.Is(err, shared.ErrReservationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
	case errs.Is(err, shared.ErrScreeningNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Screening not found", nil)
	case errors.As(err, &outOfBounds):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Seat out of hall bounds", gin.H{
			"seat_row": outOfBounds.Seat.Row(),
			"seat_col": outOfBounds.Seat.Col(),
			"rows":     outOfBounds.Rows,
			"cols":     outOfBounds.Cols,
		})
	case errs.Is(err, commands.ErrSeatConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "One or more seats already booked", nil)
	case errs.Is(err, reservation.ErrCanceledCannotComplete):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Canceled reservations cannot be completed", nil)
	case errors.As(err, &transition):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation transition", gin.H{
			"status":   transition.From.String(),
			"required": statusNames(transition.Required),
		})
	case errs.Is(err, reservation.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid reservation transition", nil)
	case errs.Is(err, reservation.ErrScreeningStarted):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Screening already started", nil)
	case errs.Is(err, shared.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed", nil)
	case errs.Is(err, reservation.ErrNoSeats),
		errs.Is(err, reservation.ErrDuplicateSeat),
		errs.Is(err, reservation.ErrInvalidSeat),
		errs.Is(err, reservation.ErrNoteTooLong):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request data", err.Error())
	case errs.Is(err, commands.ErrIdempotencyConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key reused with a different request", nil)
	case errs.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Request is currently being processed", nil)
	case errs.Is(err, queries.ErrInvalidCursor):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func statusNames(statuses []reservation.Status) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return names
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func abortBadRequest(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", err.Error())
}

func abortUnauthenticated(c *gin.Context) {
	httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "User not authenticated", nil)
}
