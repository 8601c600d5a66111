package queries

import (
	"time"

	"github.com/google/uuid"
)

type TicketView struct {
	ID      uuid.UUID `json:"id"`
	SeatRow int       `json:"seat_row"`
	SeatCol int       `json:"seat_col"`
}

type SeatView struct {
	SeatRow int `json:"seat_row"`
	SeatCol int `json:"seat_col"`
}

type ReservationView struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	UserEmail   string       `json:"user_email"`
	ScreeningID uuid.UUID    `json:"screening_id"`
	MovieTitle  string       `json:"movie_title"`
	StartsAt    time.Time    `json:"starts_at"`
	Status      string       `json:"status"`
	Notes       string       `json:"notes"`
	Tickets     []TicketView `json:"tickets"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type ReservationListItem struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	ScreeningID uuid.UUID    `json:"screening_id"`
	MovieTitle  string       `json:"movie_title"`
	StartsAt    time.Time    `json:"starts_at"`
	Status      string       `json:"status"`
	Tickets     []TicketView `json:"tickets"`
	CreatedAt   time.Time    `json:"created_at"`
}

type ReservationPage struct {
	Items      []*ReservationListItem `json:"items"`
	NextCursor *string                `json:"next_cursor,omitempty"`
}

// AvailabilityView lists every seat that has a ticket, whatever the status of
// the owning reservation.
type AvailabilityView struct {
	ScreeningID uuid.UUID  `json:"screening_id"`
	HallID      uuid.UUID  `json:"hall_id"`
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	Taken       []SeatView `json:"taken"`
}

// CacheVersion is the cache generation of a screening as observed on a miss.
// The zero value is not a version and never allows a write.
type CacheVersion struct {
	generation int64
	valid      bool
}

func NewCacheVersion(generation int64) CacheVersion {
	return CacheVersion{generation: generation, valid: true}
}

func (v CacheVersion) Generation() int64 {
	return v.generation
}

func (v CacheVersion) Valid() bool {
	return v.valid
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
