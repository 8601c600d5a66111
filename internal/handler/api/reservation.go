package api

import (
	"context"
	"net/http"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	resdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/response"
	"github.com/desidobreva/CinemaReservations/internal/handler/httperr"
	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

type ReservationHandler struct {
	reservationCommands commands.ReservationCommands
	reservationQueries  queries.ReservationQueries
}

func NewReservationHandler(reservationCommands commands.ReservationCommands, reservationQueries queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{
		reservationCommands: reservationCommands,
		reservationQueries:  reservationQueries,
	}
}

// @Summary Create reservation
// @Description Books all requested seats of one screening or none of them
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the first response for a retried request"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var idempotencyKey *uuid.UUID
	if raw := c.GetHeader(idempotencyKeyHeader); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid Idempotency-Key format", nil)
			return
		}
		idempotencyKey = &key
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	result, err := h.reservationCommands.Create(c.Request.Context(), principal, req, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.IsReplayed {
		c.Header("Idempotent-Replayed", "true")
	}
	h.respondReservation(c, http.StatusCreated, result.Reservation)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondReservation(c, http.StatusOK, view)
}

// @Summary List my reservations
// @Description Newest first, keyset paginated
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param after query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.ReservationPageResponse
// @Failure 400 {object} httperr.Response
// @Router /reservations/me [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
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

	page, err := h.reservationQueries.ListMine(c.Request.Context(), principal, req.After, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, page)
}

// @Summary Cancel reservation
// @Description Owner or staff. Releases every seat of the reservation.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	h.runTransition(c, h.reservationCommands.Cancel)
}

// @Summary Confirm payment
// @Description Mock payment. Only PENDING reservations whose screening has not started.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.ConfirmPaymentRequest false "Payment method"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmPayment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reqdto.ConfirmPaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, err)
			return
		}
	}

	view, err := h.reservationCommands.ConfirmPayment(c.Request.Context(), principal, id, req.GetMethod())
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondReservation(c, http.StatusOK, view)
}

// @Summary Reschedule reservation
// @Description Cancels the reservation, then books the new seats as a fresh PENDING reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.RescheduleRequest true "New screening and seats"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /reservations/{id}/reschedule [post]
func (h *ReservationHandler) Reschedule(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req reqdto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	view, err := h.reservationCommands.Reschedule(c.Request.Context(), principal, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondReservation(c, http.StatusCreated, view)
}

type transitionFunc func(ctx context.Context, principal auth.Principal, id uuid.UUID) (*queries.ReservationView, error)

// runTransition serves the body-less POST /:id/<action> endpoints.
func (h *ReservationHandler) runTransition(c *gin.Context, fn transitionFunc) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondReservation(c, http.StatusOK, view)
}

func (h *ReservationHandler) respondReservation(c *gin.Context, status int, view *queries.ReservationView) {
	res, err := resdto.FromReservationView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, res)
}

func respondPage(c *gin.Context, page *queries.ReservationPage) {
	res, err := resdto.FromReservationPage(page)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}
