//go:build unit

package repository

import (
	"context"
	"testing"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTicketWriteQueries struct {
	mock.Mock
}

func (m *MockTicketWriteQueries) InsertTickets(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertTicketsParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockTicketWriteQueries) DeleteTicketsByReservation(ctx context.Context, db sqlc.DBTX, reservationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, db, reservationID)
	return args.Get(0).(int64), args.Error(1)
}

func mustTickets(t *testing.T, coords ...[2]int) []reservation.Ticket {
	t.Helper()
	tickets := make([]reservation.Ticket, 0, len(coords))
	for _, c := range coords {
		seat, err := reservation.NewSeat(c[0], c[1])
		require.NoError(t, err)
		tickets = append(tickets, reservation.NewTicket(seat))
	}
	return tickets
}

func TestTicketRepository_Insert(t *testing.T) {
	reservationID := uuid.New()
	screeningID := uuid.New()
	tickets := mustTickets(t, [2]int{1, 1}, [2]int{1, 2})

	tests := []struct {
		name       string
		queryErr   error
		wantResult shared.CommitResult
		wantKind   infra.RepositoryErrorKind
	}{
		{
			name:       "committed",
			wantResult: shared.Committed,
		},
		{
			name:       "seat index violation is a conflict",
			queryErr:   &pgconn.PgError{Code: infra.PgCodeUniqueViolation, ConstraintName: SeatConstraint},
			wantResult: shared.ConflictDetected,
		},
		{
			name:       "other unique violation is an error",
			queryErr:   &pgconn.PgError{Code: infra.PgCodeUniqueViolation, ConstraintName: "reservation_tickets_pkey"},
			wantResult: shared.ConflictDetected,
			wantKind:   infra.KindDuplicateKey,
		},
		{
			name:       "foreign key violation",
			queryErr:   &pgconn.PgError{Code: infra.PgCodeForeignKeyViolation},
			wantResult: shared.ConflictDetected,
			wantKind:   infra.KindForeignKeyViolated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockTicketWriteQueries)
			mockQueries.On("InsertTickets", mock.Anything, mock.Anything, mock.MatchedBy(func(arg sqlc.InsertTicketsParams) bool {
				return arg.ReservationID == reservationID &&
					arg.ScreeningID == screeningID &&
					assert.ObjectsAreEqual([]int32{1, 1}, arg.SeatRows) &&
					assert.ObjectsAreEqual([]int32{1, 2}, arg.SeatCols) &&
					len(arg.Ids) == 2
			})).Return(tt.queryErr)

			result, err := NewTicketRepository(mockQueries, nil).Insert(context.Background(), reservationID, screeningID, tickets)

			assert.Equal(t, tt.wantResult, result)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				assert.NoError(t, err)
			}
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestTicketRepository_Release(t *testing.T) {
	reservationID := uuid.New()
	mockQueries := new(MockTicketWriteQueries)
	mockQueries.On("DeleteTicketsByReservation", mock.Anything, mock.Anything, reservationID).Return(int64(3), nil)

	n, err := NewTicketRepository(mockQueries, nil).Release(context.Background(), reservationID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
