package memory

import (
	"context"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/domain/reservation"
	"github.com/desidobreva/CinemaReservations/internal/domain/screening"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) shared.UnitOfWork {
	return &UnitOfWork{store: store}
}

// Within must not be re-entered from fn.
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	working := u.store.state.clone()
	if err := fn(ctx, &memTx{st: working, store: u.store}); err != nil {
		return err
	}

	u.store.state = working
	return nil
}

func (u *UnitOfWork) CommandReads() shared.CommandReads {
	return &commandReads{store: u.store}
}

type memTx struct {
	st    *state
	store *Store
}

func (t *memTx) Reservations() shared.ReservationRepository {
	return &reservationRepo{st: t.st}
}

func (t *memTx) Tickets() shared.TicketLedger {
	return &ticketLedger{st: t.st}
}

func (t *memTx) Idempotency() shared.IdempotencyRepository {
	return &idempotencyRepo{st: t.st, now: t.store.clock.Now}
}

func (t *memTx) Notifications() shared.NotificationRepository {
	return &notificationRepo{st: t.st}
}

func (t *memTx) Users() shared.UserRepository {
	return &userRepo{st: t.st, now: t.store.clock.Now}
}

func (t *memTx) Reads() shared.CommandReads {
	return &commandReads{store: t.store, st: t.st}
}

type reservationRepo struct {
	st *state
}

func (r *reservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.st.reservations[res.ID()]; ok {
		return infra.WrapRepoErr("reservation already exists", nil, infra.KindDuplicateKey)
	}
	if _, ok := r.st.users[res.UserID()]; !ok {
		return infra.WrapRepoErr("unknown user", nil, infra.KindForeignKeyViolated)
	}
	if _, ok := r.st.screenings[res.ScreeningID()]; !ok {
		return infra.WrapRepoErr("unknown screening", nil, infra.KindForeignKeyViolated)
	}

	r.st.reservations[res.ID()] = reservationRow{
		id:          res.ID(),
		userID:      res.UserID(),
		screeningID: res.ScreeningID(),
		status:      res.Status().String(),
		notes:       res.Note().Value(),
		createdAt:   dbTime(res.CreatedAt()),
		updatedAt:   dbTime(res.UpdatedAt()),
	}
	return nil
}

func (r *reservationRepo) UpdateStatus(_ context.Context, res *reservation.Reservation) error {
	row, ok := r.st.reservations[res.ID()]
	if !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	row.status = res.Status().String()
	row.updatedAt = dbTime(res.UpdatedAt())
	r.st.reservations[res.ID()] = row
	return nil
}

func (r *reservationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.st.reservations[id]; !ok {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	r.st.releaseTickets(id)
	delete(r.st.reservations, id)
	return nil
}

func (r *reservationRepo) CompletePast(_ context.Context, now time.Time) ([]shared.CompletedReservation, error) {
	var completed []shared.CompletedReservation
	for id, row := range r.st.reservations {
		if row.status != reservation.StatusConfirmed.String() {
			continue
		}
		scr, ok := r.st.screenings[row.screeningID]
		if !ok || scr.screening.StartsAt().After(now.UTC()) {
			continue
		}
		row.status = reservation.StatusCompleted.String()
		row.updatedAt = dbTime(now)
		r.st.reservations[id] = row
		completed = append(completed, shared.CompletedReservation{
			ID:          row.id,
			UserID:      row.userID,
			ScreeningID: row.screeningID,
		})
	}
	return completed, nil
}

// ticketLedger checks every seat before writing any, which gives the same
// all-or-nothing outcome as the unique index.
type ticketLedger struct {
	st *state
}

func (l *ticketLedger) Insert(_ context.Context, reservationID, screeningID uuid.UUID, tickets []reservation.Ticket) (shared.CommitResult, error) {
	if _, ok := l.st.reservations[reservationID]; !ok {
		return shared.ConflictDetected, infra.WrapRepoErr("unknown reservation", nil, infra.KindForeignKeyViolated)
	}

	for _, t := range tickets {
		if _, taken := l.st.seats[seatKey{screeningID, t.Seat().Row(), t.Seat().Col()}]; taken {
			return shared.ConflictDetected, nil
		}
	}

	for _, t := range tickets {
		l.st.tickets[t.ID()] = ticketRow{
			id:            t.ID(),
			reservationID: reservationID,
			screeningID:   screeningID,
			row:           t.Seat().Row(),
			col:           t.Seat().Col(),
		}
		l.st.seats[seatKey{screeningID, t.Seat().Row(), t.Seat().Col()}] = t.ID()
	}
	return shared.Committed, nil
}

func (l *ticketLedger) Release(_ context.Context, reservationID uuid.UUID) (int64, error) {
	return l.st.releaseTickets(reservationID), nil
}

type idempotencyRepo struct {
	st  *state
	now func() time.Time
}

func (r *idempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	k := idempotencyKey{key, userID}
	if existing, ok := r.st.idempotency[k]; ok && !existing.ExpiresAt.Before(r.now()) {
		return false, nil
	}

	r.st.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *idempotencyRepo) UpdateStatusCompleted(_ context.Context, key, userID uuid.UUID, _ string, resultReservationID uuid.UUID) error {
	k := idempotencyKey{key, userID}
	rec, ok := r.st.idempotency[k]
	if !ok {
		return nil
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultReservationID = &resultReservationID
	r.st.idempotency[k] = rec
	return nil
}

type notificationRepo struct {
	st *state
}

func (r *notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	r.st.jobs = append(r.st.jobs, jobRow{
		job: shared.NotificationJob{
			ID:      uuid.New(),
			Kind:    kind,
			Topic:   topic,
			Payload: payload,
			RunAt:   dbTime(runAt),
		},
		status: shared.JobStatusQueued,
	})
	return nil
}

func (r *notificationRepo) ClaimPending(_ context.Context, now time.Time, limit int32) ([]shared.NotificationJob, error) {
	var jobs []shared.NotificationJob
	for _, j := range r.st.jobs {
		if int32(len(jobs)) >= limit { // #nosec G115 -- bounded by limit
			break
		}
		if j.status == shared.JobStatusQueued && !j.job.RunAt.After(now) {
			jobs = append(jobs, j.job)
		}
	}
	return jobs, nil
}

func (r *notificationRepo) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status string, lastError *string, runAt time.Time) error {
	for i, j := range r.st.jobs {
		if j.job.ID == jobID {
			r.st.jobs[i].status = status
			r.st.jobs[i].lastError = lastError
			r.st.jobs[i].job.RunAt = dbTime(runAt)
			r.st.jobs[i].job.Attempts++
			return nil
		}
	}
	return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
}

type userRepo struct {
	st  *state
	now func() time.Time
}

func (r *userRepo) Create(_ context.Context, u *user.User) (uuid.UUID, error) {
	for _, existing := range r.st.users {
		if existing.email == u.Email().Value() {
			return uuid.Nil, infra.WrapRepoErr("failed to create user", nil, infra.KindDuplicateKey)
		}
	}

	now := dbTime(r.now())
	r.st.users[u.ID()] = userRow{
		id:           u.ID(),
		email:        u.Email().Value(),
		passwordHash: u.PasswordHash(),
		role:         u.Role().String(),
		isActive:     u.IsActive(),
		createdAt:    now,
		updatedAt:    now,
	}
	return u.ID(), nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	row, ok := r.st.users[id]
	if !ok {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	now := dbTime(r.now())
	row.lastLogin = &now
	row.updatedAt = now
	r.st.users[id] = row
	return nil
}

func (r *userRepo) UpdateRole(_ context.Context, id uuid.UUID, role user.Role) error {
	row, ok := r.st.users[id]
	if !ok {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	row.role = role.String()
	row.updatedAt = dbTime(r.now())
	r.st.users[id] = row
	return nil
}

// commandReads reads the working copy inside a unit of work and the
// committed state otherwise.
type commandReads struct {
	store *Store
	st    *state
}

func (r *commandReads) read(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fn(r.store.state)
}

func (r *commandReads) ScreeningByID(_ context.Context, id uuid.UUID) (*screening.Screening, error) {
	var scr *screening.Screening
	err := r.read(func(st *state) error {
		row, ok := st.screenings[id]
		if !ok {
			return infra.WrapRepoErr("screening not found", nil, infra.KindNotFound)
		}
		scr = row.screening
		return nil
	})
	return scr, err
}

func (r *commandReads) ReservationByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := r.read(func(st *state) error {
		row, ok := st.reservations[id]
		if !ok {
			return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
		}
		var err error
		res, err = toAggregate(row, st.ticketsOf(id))
		return err
	})
	return res, err
}

func (r *commandReads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var rec *shared.IdempotencyRecord
	err := r.read(func(st *state) error {
		found, ok := st.idempotency[idempotencyKey{key, userID}]
		if !ok {
			return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
		}
		rec = &found
		return nil
	})
	return rec, err
}

func (r *commandReads) UserByEmail(_ context.Context, email user.Email) (*user.User, error) {
	var u *user.User
	err := r.read(func(st *state) error {
		for _, row := range st.users {
			if row.email == email.Value() {
				var err error
				u, err = toUser(row)
				return err
			}
		}
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	})
	return u, err
}

func toAggregate(row reservationRow, tickets []ticketRow) (*reservation.Reservation, error) {
	status, err := reservation.NewStatus(row.status)
	if err != nil {
		return nil, err
	}
	note, err := reservation.NewNote(row.notes)
	if err != nil {
		return nil, err
	}

	domainTickets := make([]reservation.Ticket, len(tickets))
	for i, t := range tickets {
		domainTickets[i] = reservation.ReconstructTicket(t.id, t.row, t.col)
	}

	return reservation.ReconstructReservation(row.id, row.userID, row.screeningID, status, note, domainTickets, row.createdAt, row.updatedAt), nil
}

func toUser(row userRow) (*user.User, error) {
	email, err := user.NewEmail(row.email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(row.role)
	if err != nil {
		return nil, err
	}
	return user.ReconstructUser(row.id, email, row.passwordHash, role, row.isActive, row.lastLogin, row.createdAt, row.updatedAt), nil
}
