//go:build unit

package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/handler/api"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	resdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/response"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
	"github.com/desidobreva/CinemaReservations/tests/common/builder"
	"github.com/desidobreva/CinemaReservations/tests/common/httptest"
	"github.com/desidobreva/CinemaReservations/tests/common/testutil"
	commandsmock "github.com/desidobreva/CinemaReservations/tests/mock/commands"
	queriesmock "github.com/desidobreva/CinemaReservations/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// withPrincipal stands in for the auth middleware.
func withPrincipal(p auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", p.ID)
		c.Set("user_role", p.Role)
		c.Next()
	}
}

func registerValidations(t *testing.T) {
	t.Helper()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("unexpected validator engine")
	}
	if err := reqdto.RegisterValidations(v); err != nil {
		t.Fatal(err)
	}
}

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	principal    auth.Principal
}

func (s *ReservationHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidations(s.T())
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.principal = auth.NewPrincipal(uuid.New(), user.RoleUser)

	h := api.NewReservationHandler(s.mockCommands, s.mockQueries)
	s.router = gin.New()
	g := s.router.Group("/reservations", withPrincipal(s.principal))
	g.POST("", h.Create)
	g.GET("/me", h.ListMine)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/confirm", h.ConfirmPayment)
	g.POST("/:id/reschedule", h.Reschedule)

	s.router.GET("/anonymous/:id", h.GetByID)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

func (s *ReservationHandlerTestSuite) TestCreate() {
	url := "/reservations"
	b := builder.NewReservationBuilder().WithUserID(s.principal.ID)
	reqBody := b.BuildCreateDTO()
	view := b.BuildReadModel()

	s.Run("success: returns 201 with tickets", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), s.principal, reqBody, (*uuid.UUID)(nil)).
			Return(&commands.CreateReservationResult{Reservation: view}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.ID)
		s.Equal("PENDING", response.Status)
		s.Len(response.Tickets, 2)
		s.Equal(1, response.Tickets[1].SeatRow)
		s.Equal(2, response.Tickets[1].SeatCol)
		s.Empty(rec.Header().Get("Idempotent-Replayed"))
	})

	s.Run("success: idempotency key is forwarded and replays are flagged", func() {
		key := uuid.New()
		s.mockCommands.EXPECT().Create(gomock.Any(), s.principal, reqBody, &key).
			Return(&commands.CreateReservationResult{Reservation: view, IsReplayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, map[string]string{
			"Idempotency-Key": key.String(),
		})

		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, nil)
		s.Equal("true", rec.Header().Get("Idempotent-Replayed"))
	})

	s.Run("error: malformed idempotency key", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, map[string]string{
			"Idempotency-Key": "not-a-uuid",
		})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Idempotency-Key")
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing screening_id", mutate: testutil.Field("screening_id", nil)},
			{name: "missing seats", mutate: testutil.Field("seats", nil)},
			{name: "empty seats", mutate: testutil.Field("seats", []any{})},
			{name: "seat row zero", mutate: testutil.Field("seats", []any{map[string]any{"seat_row": 0, "seat_col": 1}})},
			{name: "negative seat col", mutate: testutil.Field("seats", []any{map[string]any{"seat_row": 1, "seat_col": -1}})},
			{
				name: "duplicate seat",
				mutate: testutil.Field("seats", []any{
					map[string]any{"seat_row": 2, "seat_col": 3},
					map[string]any{"seat_row": 2, "seat_col": 3},
				}),
			},
			{name: "notes too long", mutate: testutil.Field("notes", strings.Repeat("a", 1001))},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
			})
		}
	})

	s.Run("error: maps engine errors to proper statuses", func() {
		outOfBoundsSeat, err := reservation.NewSeat(9, 1)
		s.Require().NoError(err)

		cases := []struct {
			name           string
			err            error
			expectedStatus int
			expectedMsg    string
		}{
			{"screening not found", shared.ErrScreeningNotFound, http.StatusNotFound, "Screening not found"},
			{"seat out of bounds", &reservation.OutOfBoundsError{Seat: outOfBoundsSeat, Rows: 5, Cols: 5}, http.StatusBadRequest, "Seat out of hall bounds"},
			{"seat conflict", errs.Wrap(commands.ErrSeatConflict, "insert tickets"), http.StatusConflict, "One or more seats already booked"},
			{"idempotency conflict", commands.ErrIdempotencyConflict, http.StatusConflict, "Idempotency key reused"},
			{"idempotency in progress", commands.ErrIdempotencyInProgress, http.StatusConflict, "currently being processed"},
			{"internal", errs.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), s.principal, reqBody, (*uuid.UUID)(nil)).
					Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})

	s.Run("error: out of bounds detail names the seat and hall", func() {
		seat, err := reservation.NewSeat(6, 2)
		s.Require().NoError(err)
		s.mockCommands.EXPECT().Create(gomock.Any(), s.principal, reqBody, (*uuid.UUID)(nil)).
			Return(nil, errs.Wrap(&reservation.OutOfBoundsError{Seat: seat, Rows: 5, Cols: 8}, "book")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var body struct {
			Detail map[string]int `json:"detail"`
		}
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), rec.Body, &body))
		s.Equal(map[string]int{"seat_row": 6, "seat_col": 2, "rows": 5, "cols": 8}, body.Detail)
	})
}

func (s *ReservationHandlerTestSuite) TestGetByID() {
	view := builder.NewReservationBuilder().WithUserID(s.principal.ID).BuildReadModel()

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.MovieTitle, response.MovieTitle)
		s.Equal(view.Notes, response.Notes)
	})

	s.Run("error: invalid id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/abc", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id format")
	})

	s.Run("error: not found", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(nil, shared.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})

	s.Run("error: other user's reservation", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(nil, shared.ErrForbidden).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/"+view.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Not allowed")
	})

	s.Run("error: no principal in context", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/anonymous/"+view.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "User not authenticated")
	})
}

func (s *ReservationHandlerTestSuite) TestListMine() {
	items := []*queries.ReservationListItem{
		builder.NewReservationBuilder().BuildListItem(),
		builder.NewReservationBuilder().WithStatus("CONFIRMED").BuildListItem(),
	}
	next := "cursor-2"

	s.Run("success: passes cursor and limit", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.principal, "cursor-1", 2).
			Return(&queries.ReservationPage{Items: items, NextCursor: &next}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/me?after=cursor-1&limit=2", nil, "")

		var response resdto.ReservationPageResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Items, 2)
		s.Equal("CONFIRMED", response.Items[1].Status)
		s.Require().NotNil(response.NextCursor)
		s.Equal(next, *response.NextCursor)
	})

	s.Run("success: defaults", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.principal, "", 0).
			Return(&queries.ReservationPage{Items: []*queries.ReservationListItem{}}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/me", nil, "")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal([]any{}, response["items"])
		s.NotContains(response, "next_cursor")
	})

	s.Run("error: limit above maximum", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/me?limit=500", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: bad cursor", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.principal, "garbage", 0).
			Return(nil, errs.Mark(errs.New("decode"), queries.ErrInvalidCursor)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/me?after=garbage", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid cursor")
	})
}

func (s *ReservationHandlerTestSuite) TestCancel() {
	view := builder.NewReservationBuilder().WithStatus("CANCELED").BuildReadModel()
	url := "/reservations/" + view.ID.String() + "/cancel"

	s.Run("success", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.principal, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("CANCELED", response.Status)
	})

	s.Run("error: invalid transition carries the required status", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.principal, view.ID).Return(nil, &reservation.TransitionError{
			Action:   "cancel",
			From:     reservation.StatusCompleted,
			Required: []reservation.Status{reservation.StatusPending, reservation.StatusConfirmed},
		}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")

		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
			Detail struct {
				Status   string   `json:"status"`
				Required []string `json:"required"`
			} `json:"detail"`
		}
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), rec.Body, &body))
		s.Equal("Invalid reservation transition", body.Error.Message)
		s.Equal("COMPLETED", body.Detail.Status)
		s.Equal([]string{"PENDING", "CONFIRMED"}, body.Detail.Required)
	})

	s.Run("error: forbidden", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.principal, view.ID).Return(nil, shared.ErrForbidden).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Not allowed")
	})
}

func (s *ReservationHandlerTestSuite) TestConfirmPayment() {
	view := builder.NewReservationBuilder().WithStatus("CONFIRMED").BuildReadModel()
	url := "/reservations/" + view.ID.String() + "/confirm"

	s.Run("success: default method without a body", func() {
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), s.principal, view.ID, reqdto.DefaultPaymentMethod).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: explicit method", func() {
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), s.principal, view.ID, "card").
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqdto.ConfirmPaymentRequest{Method: "card"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: screening already started", func() {
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), s.principal, view.ID, reqdto.DefaultPaymentMethod).
			Return(nil, reservation.ErrScreeningStarted).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Screening already started")
	})
}

func (s *ReservationHandlerTestSuite) TestReschedule() {
	oldID := uuid.New()
	url := "/reservations/" + oldID.String() + "/reschedule"
	b := builder.NewReservationBuilder().WithUserID(s.principal.ID).WithSeats([2]int{3, 3})
	reqBody := b.BuildRescheduleDTO()
	view := b.BuildReadModel()

	s.Run("success: returns the new reservation", func() {
		s.mockCommands.EXPECT().Reschedule(gomock.Any(), s.principal, oldID, reqBody).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.ID)
		s.NotEqual(oldID, response.ID)
	})

	s.Run("error: seats taken on the new screening", func() {
		s.mockCommands.EXPECT().Reschedule(gomock.Any(), s.principal, oldID, reqBody).
			Return(nil, commands.ErrSeatConflict).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already booked")
	})

	s.Run("error: missing new_screening_id", func() {
		body := testutil.DtoMap(s.T(), reqBody, testutil.Field("new_screening_id", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})
}
