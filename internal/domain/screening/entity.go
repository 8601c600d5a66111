package screening

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidHallSize = errors.New("hall must have at least one row and one column")
	ErrEmptyHallName   = errors.New("hall name cannot be empty")
)

// Hall is the seat grid a screening takes place in.
type Hall struct {
	id   uuid.UUID
	name string
	rows int
	cols int
}

func NewHall(id uuid.UUID, name string, rows, cols int) (Hall, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Hall{}, ErrEmptyHallName
	}
	if rows < 1 || cols < 1 {
		return Hall{}, ErrInvalidHallSize
	}
	return Hall{id: id, name: name, rows: rows, cols: cols}, nil
}

// Contains reports whether the 1-indexed coordinate lies inside the grid.
func (h Hall) Contains(row, col int) bool {
	return row >= 1 && row <= h.rows && col >= 1 && col <= h.cols
}

func (h Hall) ID() uuid.UUID { return h.id }
func (h Hall) Name() string  { return h.name }
func (h Hall) Rows() int     { return h.rows }
func (h Hall) Cols() int     { return h.cols }

// Screening is reference data: the core only reads it.
type Screening struct {
	id         uuid.UUID
	movieID    uuid.UUID
	providerID uuid.UUID
	startsAt   time.Time
	hall       Hall
}

func NewScreening(id, movieID, providerID uuid.UUID, startsAt time.Time, hall Hall) *Screening {
	return &Screening{
		id:         id,
		movieID:    movieID,
		providerID: providerID,
		startsAt:   startsAt.UTC(),
		hall:       hall,
	}
}

// HasStarted is true once now is at or past the start time. Both sides are
// compared in UTC.
func (s *Screening) HasStarted(now time.Time) bool {
	return !s.startsAt.After(now.UTC())
}

func (s *Screening) ID() uuid.UUID         { return s.id }
func (s *Screening) MovieID() uuid.UUID    { return s.movieID }
func (s *Screening) ProviderID() uuid.UUID { return s.providerID }
func (s *Screening) StartsAt() time.Time   { return s.startsAt }
func (s *Screening) Hall() Hall            { return s.hall }
