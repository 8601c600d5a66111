package shared

import (
	"context"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"

	"github.com/google/uuid"
)

// UnitOfWork runs fn in one transaction. A nil return commits; any error
// rolls back every write made through tx.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	CommandReads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	Tickets() TicketLedger
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Reads() CommandReads
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	UpdateStatus(ctx context.Context, res *reservation.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	CompletePast(ctx context.Context, now time.Time) ([]CompletedReservation, error)
}

// TicketLedger is the only writer of seat tickets.
type TicketLedger interface {
	Insert(ctx context.Context, reservationID, screeningID uuid.UUID, tickets []reservation.Ticket) (CommitResult, error)
	Release(ctx context.Context, reservationID uuid.UUID) (int64, error)
}

type IdempotencyRepository interface {
	// TryInsert reports whether the key was claimed by this call.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, key, userID uuid.UUID, responseBodyHash string, resultReservationID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	ClaimPending(ctx context.Context, now time.Time, limit int32) ([]NotificationJob, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string, lastError *string, runAt time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error
}

// CommandReads are the reads a command needs before it writes. Inside a
// transaction ReservationByID locks the row.
type CommandReads interface {
	ScreeningByID(ctx context.Context, id uuid.UUID) (*screening.Screening, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	UserByEmail(ctx context.Context, email user.Email) (*user.User, error)
}
