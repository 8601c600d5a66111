//go:build unit || e2e

package builder

import (
	"time"

	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	UserEmail   string
	ScreeningID uuid.UUID
	MovieTitle  string
	StartsAt    time.Time
	Status      string
	Notes       string
	Seats       [][2]int
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		UserEmail:   "test@example.com",
		ScreeningID: uuid.New(),
		MovieTitle:  "Metropolis",
		StartsAt:    time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second),
		Status:      "PENDING",
		Notes:       "aisle please",
		Seats:       [][2]int{{1, 1}, {1, 2}},
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithStatus(status string) *ReservationBuilder {
	b.Status = status
	return b
}

func (b *ReservationBuilder) WithUserID(id uuid.UUID) *ReservationBuilder {
	b.UserID = id
	return b
}

func (b *ReservationBuilder) WithScreeningID(id uuid.UUID) *ReservationBuilder {
	b.ScreeningID = id
	return b
}

func (b *ReservationBuilder) WithSeats(seats ...[2]int) *ReservationBuilder {
	b.Seats = seats
	return b
}

func (b *ReservationBuilder) BuildCreateDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		ScreeningID: b.ScreeningID,
		Seats:       b.seatRequests(),
		Notes:       b.Notes,
	}
}

func (b *ReservationBuilder) BuildRescheduleDTO() reqdto.RescheduleRequest {
	return reqdto.RescheduleRequest{
		NewScreeningID: b.ScreeningID,
		Seats:          b.seatRequests(),
		Notes:          b.Notes,
	}
}

func (b *ReservationBuilder) BuildReadModel() *queries.ReservationView {
	now := time.Now().UTC().Truncate(time.Second)
	tickets := make([]queries.TicketView, len(b.Seats))
	for i, s := range b.Seats {
		tickets[i] = queries.TicketView{ID: uuid.New(), SeatRow: s[0], SeatCol: s[1]}
	}
	return &queries.ReservationView{
		ID:          b.ID,
		UserID:      b.UserID,
		UserEmail:   b.UserEmail,
		ScreeningID: b.ScreeningID,
		MovieTitle:  b.MovieTitle,
		StartsAt:    b.StartsAt,
		Status:      b.Status,
		Notes:       b.Notes,
		Tickets:     tickets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (b *ReservationBuilder) BuildListItem() *queries.ReservationListItem {
	v := b.BuildReadModel()
	return &queries.ReservationListItem{
		ID:          v.ID,
		UserID:      v.UserID,
		ScreeningID: v.ScreeningID,
		MovieTitle:  v.MovieTitle,
		StartsAt:    v.StartsAt,
		Status:      v.Status,
		Tickets:     v.Tickets,
		CreatedAt:   v.CreatedAt,
	}
}

func (b *ReservationBuilder) seatRequests() []reqdto.SeatRequest {
	seats := make([]reqdto.SeatRequest, len(b.Seats))
	for i, s := range b.Seats {
		seats[i] = reqdto.SeatRequest{SeatRow: s[0], SeatCol: s[1]}
	}
	return seats
}
