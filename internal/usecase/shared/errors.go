package shared

import "github.com/desidobreva/CinemaReservations/internal/pkg/errs"

// Errors shared by the command and query sides.
var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrScreeningNotFound   = errs.New("screening not found")
	ErrForbidden           = errs.New("not allowed")
)
