//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/infra/memory"
	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recordingCache struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
	cancelable  int
}

func (c *recordingCache) Get(context.Context, uuid.UUID) (*queries.AvailabilityView, queries.CacheVersion, bool) {
	return nil, queries.CacheVersion{}, false
}

func (c *recordingCache) Set(context.Context, *queries.AvailabilityView, queries.CacheVersion) {}

func (c *recordingCache) Invalidate(ctx context.Context, screeningID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, screeningID)
	if ctx.Done() != nil {
		c.cancelable++
	}
}

type ReservationCommandsSuite struct {
	suite.Suite

	ctx      context.Context
	now      time.Time
	clock    *clock.MockClock
	store    *memory.Store
	cache    *recordingCache
	commands commands.ReservationCommands
	queries  queries.ReservationQueries

	owner    auth.Principal
	stranger auth.Principal
	provider auth.Principal
	admin    auth.Principal

	small *screening.Screening // 2x2
	large *screening.Screening // 5x5
}

func TestReservationCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReservationCommandsSuite))
}

func (s *ReservationCommandsSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	s.clock = clock.NewMockClock(s.now)
	s.store = memory.NewStore(s.clock)
	s.cache = &recordingCache{}

	s.owner = s.addUser("owner@example.com", user.RoleUser)
	s.stranger = s.addUser("stranger@example.com", user.RoleUser)
	s.provider = s.addUser("provider@example.com", user.RoleProvider)
	s.admin = s.addUser("admin@example.com", user.RoleAdmin)

	s.small = s.addScreening(2, 2, s.now.Add(2*time.Hour))
	s.large = s.addScreening(5, 5, s.now.Add(26*time.Hour))

	readStore := memory.NewReadStore(s.store)
	s.queries = queries.NewReservationQueries(readStore, readStore, s.cache)
	s.commands = commands.NewReservationCommands(memory.NewUnitOfWork(s.store), s.queries, s.cache, s.clock)
}

func (s *ReservationCommandsSuite) addUser(email string, role user.Role) auth.Principal {
	e, err := user.NewEmail(email)
	s.Require().NoError(err)
	u := user.NewUser(e, "hash", role)
	s.store.AddUser(u)
	return auth.NewPrincipal(u.ID(), role)
}

func (s *ReservationCommandsSuite) addScreening(rows, cols int, startsAt time.Time) *screening.Screening {
	hall, err := screening.NewHall(uuid.New(), "Hall", rows, cols)
	s.Require().NoError(err)
	scr := screening.NewScreening(uuid.New(), uuid.New(), s.provider.ID, startsAt, hall)
	s.store.AddScreening(scr, "Solaris")
	return scr
}

func seats(coords ...[2]int) []reqdto.SeatRequest {
	out := make([]reqdto.SeatRequest, len(coords))
	for i, c := range coords {
		out[i] = reqdto.SeatRequest{SeatRow: c[0], SeatCol: c[1]}
	}
	return out
}

func (s *ReservationCommandsSuite) book(p auth.Principal, scr *screening.Screening, coords ...[2]int) *queries.ReservationView {
	result, err := s.commands.Create(s.ctx, p, reqdto.CreateReservationRequest{
		ScreeningID: scr.ID(),
		Seats:       seats(coords...),
	}, nil)
	s.Require().NoError(err)
	return result.Reservation
}

func (s *ReservationCommandsSuite) TestCreate() {
	s.Run("books every requested seat as PENDING", func() {
		view := s.book(s.owner, s.large, [2]int{1, 1}, [2]int{1, 2})

		s.Equal(reservation.StatusPending.String(), view.Status)
		s.Equal(s.owner.ID, view.UserID)
		s.Len(view.Tickets, 2)
		s.Contains(s.cache.invalidated, s.large.ID())
		s.Contains(s.store.Topics(), commands.TopicReservationCreated)

		avail, err := s.queries.Availability(s.ctx, s.large.ID())
		s.Require().NoError(err)
		s.ElementsMatch([]queries.SeatView{{SeatRow: 1, SeatCol: 1}, {SeatRow: 1, SeatCol: 2}}, avail.Taken)
	})

	s.Run("seat outside a 2x2 hall is out of bounds", func() {
		_, err := s.commands.Create(s.ctx, s.owner, reqdto.CreateReservationRequest{
			ScreeningID: s.small.ID(),
			Seats:       seats([2]int{3, 1}),
		}, nil)

		s.True(errs.Is(err, reservation.ErrSeatOutOfBounds))
		var oob *reservation.OutOfBoundsError
		s.Require().ErrorAs(err, &oob)
		s.Equal(3, oob.Seat.Row())
		s.Equal(0, s.store.TicketCount(s.small.ID()))
	})

	s.Run("unknown screening", func() {
		_, err := s.commands.Create(s.ctx, s.owner, reqdto.CreateReservationRequest{
			ScreeningID: uuid.New(),
			Seats:       seats([2]int{1, 1}),
		}, nil)

		s.True(errs.Is(err, shared.ErrScreeningNotFound))
	})

	s.Run("duplicate seat in one request", func() {
		_, err := s.commands.Create(s.ctx, s.owner, reqdto.CreateReservationRequest{
			ScreeningID: s.small.ID(),
			Seats:       seats([2]int{1, 1}, [2]int{1, 1}),
		}, nil)

		s.True(errs.Is(err, reservation.ErrDuplicateSeat))
	})
}

func (s *ReservationCommandsSuite) TestCreate_ConflictIsAllOrNothing() {
	s.book(s.owner, s.large, [2]int{2, 2})

	_, err := s.commands.Create(s.ctx, s.stranger, reqdto.CreateReservationRequest{
		ScreeningID: s.large.ID(),
		Seats:       seats([2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}),
	}, nil)

	s.True(errs.Is(err, commands.ErrSeatConflict))
	s.Equal(1, s.store.TicketCount(s.large.ID()))

	page, err := s.queries.ListMine(s.ctx, s.stranger, "", 10)
	s.Require().NoError(err)
	s.Empty(page.Items)
}

func (s *ReservationCommandsSuite) TestCreate_ConcurrentBookingOfOneSeat() {
	const attempts = 12

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.commands.Create(s.ctx, s.owner, reqdto.CreateReservationRequest{
				ScreeningID: s.small.ID(),
				Seats:       seats([2]int{1, 1}),
			}, nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errs.Is(err, commands.ErrSeatConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(attempts-1, conflicts)
	s.Equal(1, s.store.TicketCount(s.small.ID()))
}

func (s *ReservationCommandsSuite) TestCreate_Idempotency() {
	key := uuid.New()
	req := reqdto.CreateReservationRequest{ScreeningID: s.large.ID(), Seats: seats([2]int{4, 4})}

	first, err := s.commands.Create(s.ctx, s.owner, req, &key)
	s.Require().NoError(err)
	s.False(first.IsReplayed)

	s.Run("same body replays", func() {
		again, err := s.commands.Create(s.ctx, s.owner, req, &key)
		s.Require().NoError(err)
		s.True(again.IsReplayed)
		s.Equal(first.Reservation.ID, again.Reservation.ID)
		s.Equal(1, s.store.TicketCount(s.large.ID()))
	})

	s.Run("different body is rejected", func() {
		other := req
		other.Seats = seats([2]int{4, 5})
		_, err := s.commands.Create(s.ctx, s.owner, other, &key)
		s.True(errs.Is(err, commands.ErrIdempotencyConflict))
	})

	s.Run("failed create does not keep the key", func() {
		retryKey := uuid.New()
		taken := reqdto.CreateReservationRequest{ScreeningID: s.large.ID(), Seats: seats([2]int{4, 4})}
		_, err := s.commands.Create(s.ctx, s.owner, taken, &retryKey)
		s.Require().True(errs.Is(err, commands.ErrSeatConflict))

		_, err = s.commands.Cancel(s.ctx, s.owner, first.Reservation.ID)
		s.Require().NoError(err)

		result, err := s.commands.Create(s.ctx, s.owner, taken, &retryKey)
		s.Require().NoError(err)
		s.False(result.IsReplayed)
	})
}

func (s *ReservationCommandsSuite) TestCancel() {
	view := s.book(s.owner, s.small, [2]int{1, 1}, [2]int{2, 2})

	_, err := s.commands.Cancel(s.ctx, s.stranger, view.ID)
	s.True(errs.Is(err, shared.ErrForbidden))

	canceled, err := s.commands.Cancel(s.ctx, s.owner, view.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusCanceled.String(), canceled.Status)
	s.Empty(canceled.Tickets)
	s.Equal(0, s.store.TicketCount(s.small.ID()))

	_, err = s.commands.Cancel(s.ctx, s.owner, view.ID)
	s.True(errs.Is(err, reservation.ErrInvalidTransition))

	_, err = s.commands.Cancel(s.ctx, s.owner, uuid.New())
	s.True(errs.Is(err, shared.ErrReservationNotFound))

	// released seats are bookable again
	s.book(s.stranger, s.small, [2]int{1, 1})
}

func (s *ReservationCommandsSuite) TestCancel_ByStaff() {
	view := s.book(s.owner, s.small, [2]int{1, 2})

	canceled, err := s.commands.Cancel(s.ctx, s.provider, view.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusCanceled.String(), canceled.Status)
}

func (s *ReservationCommandsSuite) TestConfirmPayment() {
	s.Run("before the screening starts", func() {
		view := s.book(s.owner, s.small, [2]int{1, 1})

		confirmed, err := s.commands.ConfirmPayment(s.ctx, s.owner, view.ID, "")
		s.Require().NoError(err)
		s.Equal(reservation.StatusConfirmed.String(), confirmed.Status)
		s.Len(confirmed.Tickets, 1)

		_, err = s.commands.ConfirmPayment(s.ctx, s.owner, view.ID, "card")
		s.True(errs.Is(err, reservation.ErrInvalidTransition))
	})

	s.Run("at the start time", func() {
		view := s.book(s.owner, s.small, [2]int{2, 1})
		s.clock.Set(s.small.StartsAt())
		defer s.clock.Set(s.now)

		_, err := s.commands.ConfirmPayment(s.ctx, s.owner, view.ID, "")
		s.True(errs.Is(err, reservation.ErrScreeningStarted))

		current, err := s.queries.GetByIDSystem(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(reservation.StatusPending.String(), current.Status)
	})

	s.Run("stranger", func() {
		view := s.book(s.owner, s.small, [2]int{2, 2})

		_, err := s.commands.ConfirmPayment(s.ctx, s.stranger, view.ID, "")
		s.True(errs.Is(err, shared.ErrForbidden))
	})
}

func (s *ReservationCommandsSuite) TestReschedule() {
	x := s.book(s.owner, s.small, [2]int{1, 1})

	y, err := s.commands.Reschedule(s.ctx, s.owner, x.ID, reqdto.RescheduleRequest{
		NewScreeningID: s.large.ID(),
		Seats:          seats([2]int{1, 1}),
	})
	s.Require().NoError(err)

	old, err := s.queries.GetByIDSystem(s.ctx, x.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusCanceled.String(), old.Status)
	s.Empty(old.Tickets)

	s.Equal(s.large.ID(), y.ScreeningID)
	s.Equal(reservation.StatusPending.String(), y.Status)
	s.Require().Len(y.Tickets, 1)
	s.Equal(1, y.Tickets[0].SeatRow)
	s.Equal(1, y.Tickets[0].SeatCol)

	s.Contains(s.cache.invalidated, s.small.ID())
	s.Contains(s.cache.invalidated, s.large.ID())

	_, err = s.commands.Reschedule(s.ctx, s.owner, x.ID, reqdto.RescheduleRequest{
		NewScreeningID: s.large.ID(),
		Seats:          seats([2]int{2, 2}),
	})
	s.True(errs.Is(err, reservation.ErrInvalidTransition))
}

func (s *ReservationCommandsSuite) TestReschedule_FailedBookingKeepsOldCanceled() {
	x := s.book(s.owner, s.large, [2]int{3, 3})
	s.book(s.stranger, s.small, [2]int{1, 1})

	_, err := s.commands.Reschedule(s.ctx, s.owner, x.ID, reqdto.RescheduleRequest{
		NewScreeningID: s.small.ID(),
		Seats:          seats([2]int{1, 1}),
	})
	s.True(errs.Is(err, commands.ErrSeatConflict))

	old, err := s.queries.GetByIDSystem(s.ctx, x.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusCanceled.String(), old.Status)
	s.Equal(0, s.store.TicketCount(s.large.ID()))
}

func (s *ReservationCommandsSuite) TestApproveAndDecline() {
	view := s.book(s.owner, s.small, [2]int{1, 1})

	_, err := s.commands.Approve(s.ctx, s.owner, view.ID)
	s.True(errs.Is(err, shared.ErrForbidden))

	approved, err := s.commands.Approve(s.ctx, s.provider, view.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusConfirmed.String(), approved.Status)

	_, err = s.commands.Approve(s.ctx, s.provider, view.ID)
	s.True(errs.Is(err, reservation.ErrInvalidTransition))

	declined, err := s.commands.Decline(s.ctx, s.admin, view.ID)
	s.Require().NoError(err)
	s.Equal(reservation.StatusCanceled.String(), declined.Status)
	s.Empty(declined.Tickets)
	s.Equal(0, s.store.TicketCount(s.small.ID()))
}

func (s *ReservationCommandsSuite) TestAdminTransitions() {
	s.Run("confirm then complete", func() {
		view := s.book(s.owner, s.small, [2]int{1, 1})

		_, err := s.commands.AdminConfirm(s.ctx, s.provider, view.ID)
		s.True(errs.Is(err, shared.ErrForbidden))

		_, err = s.commands.AdminComplete(s.ctx, s.admin, view.ID)
		s.True(errs.Is(err, reservation.ErrInvalidTransition))
		s.False(errs.Is(err, reservation.ErrCanceledCannotComplete))

		_, err = s.commands.AdminConfirm(s.ctx, s.admin, view.ID)
		s.Require().NoError(err)

		completed, err := s.commands.AdminComplete(s.ctx, s.admin, view.ID)
		s.Require().NoError(err)
		s.Equal(reservation.StatusCompleted.String(), completed.Status)
		s.Len(completed.Tickets, 1)
	})

	s.Run("complete on canceled has its own error", func() {
		view := s.book(s.owner, s.small, [2]int{2, 2})
		_, err := s.commands.Cancel(s.ctx, s.owner, view.ID)
		s.Require().NoError(err)

		_, err = s.commands.AdminComplete(s.ctx, s.admin, view.ID)
		s.True(errs.Is(err, reservation.ErrCanceledCannotComplete))
		s.True(errs.Is(err, reservation.ErrInvalidTransition))
	})
}

func (s *ReservationCommandsSuite) TestCompletePast() {
	confirmed := s.book(s.owner, s.small, [2]int{1, 1})
	_, err := s.commands.Approve(s.ctx, s.provider, confirmed.ID)
	s.Require().NoError(err)
	pending := s.book(s.owner, s.small, [2]int{1, 2})
	future := s.book(s.owner, s.large, [2]int{1, 1})
	_, err = s.commands.Approve(s.ctx, s.provider, future.ID)
	s.Require().NoError(err)

	_, err = s.commands.CompletePast(s.ctx, s.owner)
	s.True(errs.Is(err, shared.ErrForbidden))

	s.clock.Set(s.small.StartsAt())

	n, err := s.commands.CompletePast(s.ctx, s.provider)
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.commands.CompletePast(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(0, n)

	for id, want := range map[uuid.UUID]reservation.Status{
		confirmed.ID: reservation.StatusCompleted,
		pending.ID:   reservation.StatusPending,
		future.ID:    reservation.StatusConfirmed,
	} {
		view, err := s.queries.GetByIDSystem(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want.String(), view.Status)
	}
}

func (s *ReservationCommandsSuite) TestAdminDelete() {
	view := s.book(s.owner, s.small, [2]int{1, 1})

	err := s.commands.AdminDelete(s.ctx, s.provider, view.ID)
	s.True(errs.Is(err, shared.ErrForbidden))

	s.Require().NoError(s.commands.AdminDelete(s.ctx, s.admin, view.ID))

	_, err = s.queries.GetByIDSystem(s.ctx, view.ID)
	s.True(errs.Is(err, shared.ErrReservationNotFound))
	s.Equal(0, s.store.TicketCount(s.small.ID()))
	s.Contains(s.store.Topics(), commands.TopicReservationDeleted)

	err = s.commands.AdminDelete(s.ctx, s.admin, view.ID)
	s.True(errs.Is(err, shared.ErrReservationNotFound))
}

func (s *ReservationCommandsSuite) TestInvalidationIgnoresRequestCancellation() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	result, err := s.commands.Create(ctx, s.owner, reqdto.CreateReservationRequest{
		ScreeningID: s.large.ID(),
		Seats:       seats([2]int{3, 3}),
	}, nil)
	s.Require().NoError(err)
	_, err = s.commands.Cancel(ctx, s.owner, result.Reservation.ID)
	s.Require().NoError(err)

	s.Equal([]uuid.UUID{s.large.ID(), s.large.ID()}, s.cache.invalidated)
	s.Zero(s.cache.cancelable)
}

func TestReservationEventTopics(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(clock.NewMockClock(now))
	email, err := user.NewEmail("a@example.com")
	require.NoError(t, err)
	u := user.NewUser(email, "hash", user.RoleUser)
	store.AddUser(u)
	hall, err := screening.NewHall(uuid.New(), "H", 1, 2)
	require.NoError(t, err)
	scr := screening.NewScreening(uuid.New(), uuid.New(), uuid.Nil, now.Add(time.Hour), hall)
	store.AddScreening(scr, "M")

	cache := &recordingCache{}
	readStore := memory.NewReadStore(store)
	q := queries.NewReservationQueries(readStore, readStore, cache)
	cmds := commands.NewReservationCommands(memory.NewUnitOfWork(store), q, cache, clock.NewMockClock(now))
	p := auth.NewPrincipal(u.ID(), user.RoleUser)

	created, err := cmds.Create(context.Background(), p, reqdto.CreateReservationRequest{
		ScreeningID: scr.ID(),
		Seats:       seats([2]int{1, 1}),
	}, nil)
	require.NoError(t, err)
	_, err = cmds.ConfirmPayment(context.Background(), p, created.Reservation.ID, "")
	require.NoError(t, err)
	_, err = cmds.Cancel(context.Background(), p, created.Reservation.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		commands.TopicReservationCreated,
		commands.TopicReservationConfirmed,
		commands.TopicReservationCanceled,
	}, store.Topics())
}
