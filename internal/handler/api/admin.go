package api

import (
	"net/http"

	resdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/response"
	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	reservations        *ReservationHandler
	reservationCommands commands.ReservationCommands
}

func NewAdminHandler(reservationCommands commands.ReservationCommands, reservationQueries queries.ReservationQueries) *AdminHandler {
	return &AdminHandler{
		reservations:        NewReservationHandler(reservationCommands, reservationQueries),
		reservationCommands: reservationCommands,
	}
}

// @Summary Confirm reservation
// @Description Confirms a PENDING reservation without the payment step
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/reservations/{id}/confirm [post]
func (h *AdminHandler) Confirm(c *gin.Context) {
	h.reservations.runTransition(c, h.reservationCommands.AdminConfirm)
}

// @Summary Complete reservation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/reservations/{id}/complete [post]
func (h *AdminHandler) Complete(c *gin.Context) {
	h.reservations.runTransition(c, h.reservationCommands.AdminComplete)
}

// @Summary Delete reservation
// @Description Removes the reservation and its tickets
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /admin/reservations/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.reservationCommands.AdminDelete(c.Request.Context(), principal, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Complete past reservations
// @Description Marks every CONFIRMED reservation whose screening has started as COMPLETED
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CompletePastResponse
// @Failure 403 {object} httperr.Response
// @Router /admin/complete-past-reservations [post]
func (h *AdminHandler) CompletePast(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	n, err := h.reservationCommands.CompletePast(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.CompletePastResponse{Completed: n})
}
