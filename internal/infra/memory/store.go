// Package memory is an in-process implementation of the unit of work and the
// read stores. Within holds a single lock for the whole callback and works on
// a copy of the state, so a failed callback leaves nothing behind.
package memory

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

type seatKey struct {
	screeningID uuid.UUID
	row, col    int
}

type idempotencyKey struct {
	key, userID uuid.UUID
}

type userRow struct {
	id           uuid.UUID
	email        string
	passwordHash string
	role         string
	isActive     bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

type screeningRow struct {
	screening  *screening.Screening
	movieTitle string
}

type reservationRow struct {
	id          uuid.UUID
	userID      uuid.UUID
	screeningID uuid.UUID
	status      string
	notes       string
	createdAt   time.Time
	updatedAt   time.Time
}

type ticketRow struct {
	id            uuid.UUID
	reservationID uuid.UUID
	screeningID   uuid.UUID
	row, col      int
}

type jobRow struct {
	job       shared.NotificationJob
	status    string
	lastError *string
}

type state struct {
	users        map[uuid.UUID]userRow
	screenings   map[uuid.UUID]screeningRow
	reservations map[uuid.UUID]reservationRow
	tickets      map[uuid.UUID]ticketRow
	seats        map[seatKey]uuid.UUID
	idempotency  map[idempotencyKey]shared.IdempotencyRecord
	jobs         []jobRow
}

func newState() *state {
	return &state{
		users:        map[uuid.UUID]userRow{},
		screenings:   map[uuid.UUID]screeningRow{},
		reservations: map[uuid.UUID]reservationRow{},
		tickets:      map[uuid.UUID]ticketRow{},
		seats:        map[seatKey]uuid.UUID{},
		idempotency:  map[idempotencyKey]shared.IdempotencyRecord{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[uuid.UUID]userRow, len(s.users)),
		screenings:   make(map[uuid.UUID]screeningRow, len(s.screenings)),
		reservations: make(map[uuid.UUID]reservationRow, len(s.reservations)),
		tickets:      make(map[uuid.UUID]ticketRow, len(s.tickets)),
		seats:        make(map[seatKey]uuid.UUID, len(s.seats)),
		idempotency:  make(map[idempotencyKey]shared.IdempotencyRecord, len(s.idempotency)),
		jobs:         make([]jobRow, len(s.jobs)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.screenings {
		c.screenings[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	copy(c.jobs, s.jobs)
	return c
}

func (s *state) ticketsOf(reservationID uuid.UUID) []ticketRow {
	var rows []ticketRow
	for _, t := range s.tickets {
		if t.reservationID == reservationID {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].row != rows[j].row {
			return rows[i].row < rows[j].row
		}
		return rows[i].col < rows[j].col
	})
	return rows
}

func (s *state) releaseTickets(reservationID uuid.UUID) int64 {
	var n int64
	for id, t := range s.tickets {
		if t.reservationID == reservationID {
			delete(s.seats, seatKey{t.screeningID, t.row, t.col})
			delete(s.tickets, id)
			n++
		}
	}
	return n
}

// newestFirst orders by (created_at, id) descending, the same key the
// keyset cursor uses.
func newestFirst(rows []reservationRow) {
	sort.Slice(rows, func(i, j int) bool {
		return after(rows[i].createdAt, rows[i].id, rows[j].createdAt, rows[j].id)
	})
}

func after(t1 time.Time, id1 uuid.UUID, t2 time.Time, id2 uuid.UUID) bool {
	if !t1.Equal(t2) {
		return t1.After(t2)
	}
	return bytes.Compare(id1[:], id2[:]) > 0
}

// dbTime matches the microsecond precision of a timestamptz column.
func dbTime(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

// Store owns the committed state.
type Store struct {
	mu    sync.RWMutex
	state *state
	clock clock.Clock
}

func NewStore(clk clock.Clock) *Store {
	return &Store{state: newState(), clock: clk}
}

// AddUser seeds an account directly, outside any unit of work.
func (s *Store) AddUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := dbTime(s.clock.Now())
	s.state.users[u.ID()] = userRow{
		id:           u.ID(),
		email:        u.Email().Value(),
		passwordHash: u.PasswordHash(),
		role:         u.Role().String(),
		isActive:     u.IsActive(),
		lastLogin:    u.LastLogin(),
		createdAt:    now,
		updatedAt:    now,
	}
}

// AddScreening seeds reference data.
func (s *Store) AddScreening(scr *screening.Screening, movieTitle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.screenings[scr.ID()] = screeningRow{screening: scr, movieTitle: movieTitle}
}

// Topics lists the topic of every outbox job in insertion order.
func (s *Store) Topics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]string, len(s.state.jobs))
	for i, j := range s.state.jobs {
		topics[i] = j.job.Topic
	}
	return topics
}

// JobStatuses maps outbox job ids to their current status.
func (s *Store) JobStatuses() map[uuid.UUID]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[uuid.UUID]string, len(s.state.jobs))
	for _, j := range s.state.jobs {
		statuses[j.job.ID] = j.status
	}
	return statuses
}

// TicketCount is the number of seats held for a screening.
func (s *Store) TicketCount(screeningID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.state.seats {
		if k.screeningID == screeningID {
			n++
		}
	}
	return n
}
