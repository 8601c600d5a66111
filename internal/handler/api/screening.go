package api

import (
	"net/http"

	resdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/response"
	"github.com/desidobreva/CinemaReservations/internal/handler/httperr"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ScreeningHandler struct {
	reservationQueries queries.ReservationQueries
}

func NewScreeningHandler(reservationQueries queries.ReservationQueries) *ScreeningHandler {
	return &ScreeningHandler{
		reservationQueries: reservationQueries,
	}
}

// @Summary Seat availability
// @Description Hall size and every seat that currently holds a ticket
// @Tags screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 404 {object} httperr.Response
// @Router /screenings/{id}/availability [get]
func (h *ScreeningHandler) Availability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.reservationQueries.Availability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := resdto.FromAvailabilityView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
