package response

import (
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type HallResponse struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type SeatResponse struct {
	SeatRow int `json:"seat_row"`
	SeatCol int `json:"seat_col"`
}

type AvailabilityResponse struct {
	ScreeningID uuid.UUID      `json:"screening_id"`
	Hall        HallResponse   `json:"hall"`
	TakenSeats  []SeatResponse `json:"taken_seats"`
}

func FromAvailabilityView(v *queries.AvailabilityView) (*AvailabilityResponse, error) {
	taken := []SeatResponse{}
	if len(v.Taken) > 0 {
		if err := copier.Copy(&taken, v.Taken); err != nil {
			return nil, err
		}
	}
	return &AvailabilityResponse{
		ScreeningID: v.ScreeningID,
		Hall:        HallResponse{Rows: v.Rows, Cols: v.Cols},
		TakenSeats:  taken,
	}, nil
}
