package reservation

import (
	"strings"
	"unicode/utf8"

	"github.com/desidobreva/CinemaReservations/internal/domain/screening"

	"github.com/google/uuid"
)

const MaxNoteLength = 1000

type Seat struct {
	row int
	col int
}

func NewSeat(row, col int) (Seat, error) {
	if row < 1 || col < 1 {
		return Seat{}, ErrInvalidSeat
	}
	return Seat{row: row, col: col}, nil
}

func (s Seat) Row() int { return s.row }
func (s Seat) Col() int { return s.col }

func (s Seat) Within(hall screening.Hall) error {
	if !hall.Contains(s.row, s.col) {
		return &OutOfBoundsError{Seat: s, Rows: hall.Rows(), Cols: hall.Cols()}
	}
	return nil
}

// NewSeatSet rejects empty and repeated selections; order is kept.
func NewSeatSet(seats []Seat) ([]Seat, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	seen := make(map[Seat]struct{}, len(seats))
	out := make([]Seat, 0, len(seats))
	for _, s := range seats {
		if s.row < 1 || s.col < 1 {
			return nil, ErrInvalidSeat
		}
		if _, dup := seen[s]; dup {
			return nil, ErrDuplicateSeat
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// Ticket is one seat held by a reservation.
type Ticket struct {
	id   uuid.UUID
	seat Seat
}

func NewTicket(seat Seat) Ticket {
	return Ticket{id: uuid.New(), seat: seat}
}

func ReconstructTicket(id uuid.UUID, row, col int) Ticket {
	return Ticket{id: id, seat: Seat{row: row, col: col}}
}

func (t Ticket) ID() uuid.UUID { return t.id }
func (t Ticket) Seat() Seat    { return t.seat }

type Note struct {
	value string
}

func NewNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxNoteLength {
		return Note{}, ErrNoteTooLong
	}
	return Note{value: s}, nil
}

func (n Note) Value() string {
	return n.value
}
