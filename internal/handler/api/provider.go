package api

import (
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves the staff review queue.
type ProviderHandler struct {
	reservations        *ReservationHandler
	reservationCommands commands.ReservationCommands
	reservationQueries  queries.ReservationQueries
}

func NewProviderHandler(reservationCommands commands.ReservationCommands, reservationQueries queries.ReservationQueries) *ProviderHandler {
	return &ProviderHandler{
		reservations:        NewReservationHandler(reservationCommands, reservationQueries),
		reservationCommands: reservationCommands,
		reservationQueries:  reservationQueries,
	}
}

// @Summary List incoming reservations
// @Description Every reservation, newest first
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param after query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.ReservationPageResponse
// @Failure 403 {object} httperr.Response
// @Router /provider/reservations [get]
func (h *ProviderHandler) ListIncoming(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req reqdto.ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	page, err := h.reservationQueries.ListIncoming(c.Request.Context(), principal, req.After, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, page)
}

// @Summary Approve reservation
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /provider/reservations/{id}/approve [post]
func (h *ProviderHandler) Approve(c *gin.Context) {
	h.reservations.runTransition(c, h.reservationCommands.Approve)
}

// @Summary Decline reservation
// @Description Cancels the reservation and releases its seats
// @Tags provider
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /provider/reservations/{id}/decline [post]
func (h *ProviderHandler) Decline(c *gin.Context) {
	h.reservations.runTransition(c, h.reservationCommands.Decline)
}
