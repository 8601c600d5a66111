package sqlc

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Halls struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Rows      int32              `json:"rows"`
	Cols      int32              `json:"cols"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type IdempotencyKeys struct {
	Key                 uuid.UUID          `json:"key"`
	UserID              uuid.UUID          `json:"user_id"`
	Endpoint            string             `json:"endpoint"`
	RequestHash         string             `json:"request_hash"`
	ResponseBodyHash    pgtype.Text        `json:"response_body_hash"`
	Status              string             `json:"status"`
	ResultReservationID pgtype.UUID        `json:"result_reservation_id"`
	ExpiresAt           pgtype.Timestamptz `json:"expires_at"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
	UpdatedAt           pgtype.Timestamptz `json:"updated_at"`
}

type Movies struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type NotificationJobs struct {
	ID        uuid.UUID          `json:"id"`
	Kind      string             `json:"kind"`
	Topic     string             `json:"topic"`
	Payload   []byte             `json:"payload"`
	RunAt     pgtype.Timestamptz `json:"run_at"`
	Attempts  int32              `json:"attempts"`
	Status    string             `json:"status"`
	LastError pgtype.Text        `json:"last_error"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type ReservationTickets struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	ScreeningID   uuid.UUID `json:"screening_id"`
	SeatRow       int32     `json:"seat_row"`
	SeatCol       int32     `json:"seat_col"`
}

type Reservations struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	ScreeningID uuid.UUID          `json:"screening_id"`
	Status      string             `json:"status"`
	Notes       string             `json:"notes"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type Screenings struct {
	ID         uuid.UUID          `json:"id"`
	MovieID    uuid.UUID          `json:"movie_id"`
	HallID     uuid.UUID          `json:"hall_id"`
	ProviderID pgtype.UUID        `json:"provider_id"`
	StartsAt   pgtype.Timestamptz `json:"starts_at"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

type Users struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"password_hash"`
	Role         string             `json:"role"`
	IsActive     bool               `json:"is_active"`
	LastLogin    pgtype.Timestamptz `json:"last_login"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}
