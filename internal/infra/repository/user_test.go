//go:build unit

package repository

import (
	"context"
	"testing"

	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserWriteQueries struct {
	mock.Mock
}

func (m *MockUserWriteQueries) UpdateUserLastLogin(ctx context.Context, db sqlc.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, db, id)
	return args.Error(0)
}

func (m *MockUserWriteQueries) CreateUser(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateUserParams) (uuid.UUID, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserWriteQueries) UpdateUserRole(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateUserRoleParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func TestUpdateLastLogin(t *testing.T) {
	testUserID := uuid.New()

	tests := []struct {
		name      string
		userID    uuid.UUID
		mockError error
		wantError bool
	}{
		{
			name:      "success",
			userID:    testUserID,
			mockError: nil,
			wantError: false,
		},
		{
			name:      "database error",
			userID:    testUserID,
			mockError: assert.AnError,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockUserWriteQueries)
			mockQueries.On("UpdateUserLastLogin", mock.Anything, mock.Anything, tt.userID).Return(tt.mockError)

			repo := NewUserRepository(mockQueries, nil)

			err := repo.UpdateLastLogin(context.Background(), tt.userID)

			if tt.wantError {
				assert.Error(t, err)
				assert.True(t, infra.IsKind(err, infra.KindDBFailure))
			} else {
				assert.NoError(t, err)
			}

			mockQueries.AssertExpectations(t)
		})
	}
}

func TestCreateUser(t *testing.T) {
	email, err := user.NewEmail("Alice@Example.com")
	require.NoError(t, err)
	u := user.NewUser(email, "hash", user.RoleUser)

	t.Run("success", func(t *testing.T) {
		mockQueries := new(MockUserWriteQueries)
		mockQueries.On("CreateUser", mock.Anything, mock.Anything, sqlc.CreateUserParams{
			ID:           u.ID(),
			Email:        "alice@example.com",
			PasswordHash: "hash",
			Role:         "USER",
		}).Return(u.ID(), nil)

		id, err := NewUserRepository(mockQueries, nil).Create(context.Background(), u)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), id)
		mockQueries.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockQueries := new(MockUserWriteQueries)
		dup := &pgconn.PgError{Code: infra.PgCodeUniqueViolation, ConstraintName: "uq_users_email"}
		mockQueries.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).Return(uuid.Nil, dup)

		_, err := NewUserRepository(mockQueries, nil).Create(context.Background(), u)
		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
	})
}
