package response

import (
	"time"

	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TicketResponse struct {
	ID      uuid.UUID `json:"id"`
	SeatRow int       `json:"seat_row"`
	SeatCol int       `json:"seat_col"`
}

type ReservationResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	UserEmail   string           `json:"user_email"`
	ScreeningID uuid.UUID        `json:"screening_id"`
	MovieTitle  string           `json:"movie_title"`
	StartsAt    time.Time        `json:"starts_at"`
	Status      string           `json:"status"`
	Notes       string           `json:"notes"`
	Tickets     []TicketResponse `json:"tickets"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ReservationListResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	ScreeningID uuid.UUID        `json:"screening_id"`
	MovieTitle  string           `json:"movie_title"`
	StartsAt    time.Time        `json:"starts_at"`
	Status      string           `json:"status"`
	Tickets     []TicketResponse `json:"tickets"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ReservationPageResponse struct {
	Items      []*ReservationListResponse `json:"items"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

type CompletePastResponse struct {
	Completed int `json:"completed"`
}

func FromReservationView(v *queries.ReservationView) (*ReservationResponse, error) {
	var res ReservationResponse
	if err := copier.Copy(&res, v); err != nil {
		return nil, err
	}
	if res.Tickets == nil {
		res.Tickets = []TicketResponse{}
	}
	return &res, nil
}

func FromReservationPage(p *queries.ReservationPage) (*ReservationPageResponse, error) {
	items := make([]*ReservationListResponse, len(p.Items))
	for i, it := range p.Items {
		var item ReservationListResponse
		if err := copier.Copy(&item, it); err != nil {
			return nil, err
		}
		if item.Tickets == nil {
			item.Tickets = []TicketResponse{}
		}
		items[i] = &item
	}
	return &ReservationPageResponse{
		Items:      items,
		NextCursor: p.NextCursor,
	}, nil
}
