package request

import (
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/pkg/patch"

	"github.com/google/uuid"
)

const DefaultPaymentMethod = "stripe_mock"

type SeatRequest struct {
	SeatRow int `json:"seat_row" binding:"required,min=1"`
	SeatCol int `json:"seat_col" binding:"required,min=1"`
}

type CreateReservationRequest struct {
	ScreeningID uuid.UUID     `json:"screening_id" binding:"required"`
	Seats       []SeatRequest `json:"seats" binding:"required,min=1,distinct_seats,dive"`
	Notes       string        `json:"notes" binding:"max=1000"`
}

func (r CreateReservationRequest) ToDomain() ([]reservation.Seat, reservation.Note, error) {
	return toSeatsAndNote(r.Seats, r.Notes)
}

type ConfirmPaymentRequest struct {
	Method string `json:"method" binding:"max=64"`
}

func (r ConfirmPaymentRequest) GetMethod() string {
	return patch.CoalesceNonZero(&r.Method, DefaultPaymentMethod)
}

type RescheduleRequest struct {
	NewScreeningID uuid.UUID     `json:"new_screening_id" binding:"required"`
	Seats          []SeatRequest `json:"seats" binding:"required,min=1,distinct_seats,dive"`
	Notes          string        `json:"notes" binding:"max=1000"`
}

// AsCreate is the booking half of a reschedule.
func (r RescheduleRequest) AsCreate() CreateReservationRequest {
	return CreateReservationRequest{
		ScreeningID: r.NewScreeningID,
		Seats:       r.Seats,
		Notes:       r.Notes,
	}
}

type ListReservationsRequest struct {
	After string `form:"after"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func toSeatsAndNote(in []SeatRequest, notes string) ([]reservation.Seat, reservation.Note, error) {
	seats := make([]reservation.Seat, 0, len(in))
	for _, s := range in {
		seat, err := reservation.NewSeat(s.SeatRow, s.SeatCol)
		if err != nil {
			return nil, reservation.Note{}, err
		}
		seats = append(seats, seat)
	}

	if _, err := reservation.NewSeatSet(seats); err != nil {
		return nil, reservation.Note{}, err
	}

	note, err := reservation.NewNote(notes)
	if err != nil {
		return nil, reservation.Note{}, err
	}

	return seats, note, nil
}
