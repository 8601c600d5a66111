//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/handler/api"
	resdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/response"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
	"github.com/desidobreva/CinemaReservations/tests/common/builder"
	"github.com/desidobreva/CinemaReservations/tests/common/httptest"
	commandsmock "github.com/desidobreva/CinemaReservations/tests/mock/commands"
	queriesmock "github.com/desidobreva/CinemaReservations/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StaffHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	provider     auth.Principal
	admin        auth.Principal
}

func (s *StaffHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.provider = auth.NewPrincipal(uuid.New(), user.RoleProvider)
	s.admin = auth.NewPrincipal(uuid.New(), user.RoleAdmin)

	providerHandler := api.NewProviderHandler(s.mockCommands, s.mockQueries)
	adminHandler := api.NewAdminHandler(s.mockCommands, s.mockQueries)
	screeningHandler := api.NewScreeningHandler(s.mockQueries)

	s.router = gin.New()
	p := s.router.Group("/provider", withPrincipal(s.provider))
	p.GET("/reservations", providerHandler.ListIncoming)
	p.POST("/reservations/:id/approve", providerHandler.Approve)
	p.POST("/reservations/:id/decline", providerHandler.Decline)
	p.POST("/complete-past-reservations", adminHandler.CompletePast)

	a := s.router.Group("/admin", withPrincipal(s.admin))
	a.POST("/reservations/:id/confirm", adminHandler.Confirm)
	a.POST("/reservations/:id/complete", adminHandler.Complete)
	a.DELETE("/reservations/:id", adminHandler.Delete)

	s.router.GET("/screenings/:id/availability", screeningHandler.Availability)
}

func (s *StaffHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestStaffHandlerSuite(t *testing.T) {
	suite.Run(t, new(StaffHandlerTestSuite))
}

func (s *StaffHandlerTestSuite) TestListIncoming() {
	items := []*queries.ReservationListItem{builder.NewReservationBuilder().BuildListItem()}

	s.mockQueries.EXPECT().ListIncoming(gomock.Any(), s.provider, "", 50).
		Return(&queries.ReservationPage{Items: items}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/provider/reservations?limit=50", nil, "")

	var response resdto.ReservationPageResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Require().Len(response.Items, 1)
	s.Equal(items[0].ID, response.Items[0].ID)
	s.Nil(response.NextCursor)
}

func (s *StaffHandlerTestSuite) TestApproveAndDecline() {
	id := uuid.New()

	s.Run("approve", func() {
		view := builder.NewReservationBuilder().WithStatus("CONFIRMED").BuildReadModel()
		s.mockCommands.EXPECT().Approve(gomock.Any(), s.provider, id).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/reservations/"+id.String()+"/approve", nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("CONFIRMED", response.Status)
	})

	s.Run("approve: not pending", func() {
		s.mockCommands.EXPECT().Approve(gomock.Any(), s.provider, id).Return(nil, &reservation.TransitionError{
			Action:   "approve",
			From:     reservation.StatusCanceled,
			Required: []reservation.Status{reservation.StatusPending},
		}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/reservations/"+id.String()+"/approve", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation transition")
	})

	s.Run("decline", func() {
		view := builder.NewReservationBuilder().WithStatus("CANCELED").BuildReadModel()
		s.mockCommands.EXPECT().Decline(gomock.Any(), s.provider, id).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/reservations/"+id.String()+"/decline", nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("decline: not found", func() {
		s.mockCommands.EXPECT().Decline(gomock.Any(), s.provider, id).Return(nil, shared.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/reservations/"+id.String()+"/decline", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})
}

func (s *StaffHandlerTestSuite) TestAdminTransitions() {
	id := uuid.New()

	s.Run("confirm", func() {
		view := builder.NewReservationBuilder().WithStatus("CONFIRMED").BuildReadModel()
		s.mockCommands.EXPECT().AdminConfirm(gomock.Any(), s.admin, id).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/reservations/"+id.String()+"/confirm", nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("complete", func() {
		view := builder.NewReservationBuilder().WithStatus("COMPLETED").BuildReadModel()
		s.mockCommands.EXPECT().AdminComplete(gomock.Any(), s.admin, id).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/reservations/"+id.String()+"/complete", nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("COMPLETED", response.Status)
	})

	s.Run("complete: canceled has its own message", func() {
		s.mockCommands.EXPECT().AdminComplete(gomock.Any(), s.admin, id).Return(nil, reservation.ErrCanceledCannotComplete).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/reservations/"+id.String()+"/complete", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Canceled reservations cannot be completed")
	})

	s.Run("delete", func() {
		s.mockCommands.EXPECT().AdminDelete(gomock.Any(), s.admin, id).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/reservations/"+id.String(), nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("delete: missing reservation", func() {
		s.mockCommands.EXPECT().AdminDelete(gomock.Any(), s.admin, id).Return(shared.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/reservations/"+id.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})
}

func (s *StaffHandlerTestSuite) TestCompletePast() {
	s.mockCommands.EXPECT().CompletePast(gomock.Any(), s.provider).Return(3, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/provider/complete-past-reservations", nil, "")

	var response resdto.CompletePastResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Equal(3, response.Completed)
}

func (s *StaffHandlerTestSuite) TestAvailability() {
	screeningID := uuid.New()
	url := "/screenings/" + screeningID.String() + "/availability"

	s.Run("success", func() {
		s.mockQueries.EXPECT().Availability(gomock.Any(), screeningID).Return(&queries.AvailabilityView{
			ScreeningID: screeningID,
			HallID:      uuid.New(),
			Rows:        5,
			Cols:        8,
			Taken:       []queries.SeatView{{SeatRow: 1, SeatCol: 2}, {SeatRow: 4, SeatCol: 8}},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var response resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(screeningID, response.ScreeningID)
		s.Equal(resdto.HallResponse{Rows: 5, Cols: 8}, response.Hall)
		s.Equal([]resdto.SeatResponse{{SeatRow: 1, SeatCol: 2}, {SeatRow: 4, SeatCol: 8}}, response.TakenSeats)
	})

	s.Run("success: empty hall renders an empty list", func() {
		s.mockQueries.EXPECT().Availability(gomock.Any(), screeningID).Return(&queries.AvailabilityView{
			ScreeningID: screeningID,
			Rows:        2,
			Cols:        2,
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal([]any{}, response["taken_seats"])
	})

	s.Run("error: unknown screening", func() {
		s.mockQueries.EXPECT().Availability(gomock.Any(), screeningID).Return(nil, shared.ErrScreeningNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Screening not found")
	})
}
