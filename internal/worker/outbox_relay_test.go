//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/infra/memory"
	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
	"github.com/desidobreva/CinemaReservations/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	fail      bool
	published []shared.NotificationJob
}

func (p *fakePublisher) Publish(_ context.Context, job shared.NotificationJob) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, job)
	return nil
}

func enqueue(t *testing.T, uow shared.UnitOfWork, runAt time.Time, topics ...string) {
	t.Helper()
	err := uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		for _, topic := range topics {
			if err := tx.Notifications().CreateJob(ctx, "reservation_event", topic, []byte(`{}`), runAt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func statusCount(store *memory.Store, status string) int {
	n := 0
	for _, s := range store.JobStatuses() {
		if s == status {
			n++
		}
	}
	return n
}

func TestOutboxRelay_RunOnce(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore(clk)
	uow := memory.NewUnitOfWork(store)
	pub := &fakePublisher{}
	cfg := config.OutboxConfig{Interval: time.Second, BatchSize: 2, MaxAttempts: 3}

	enqueue(t, uow, now, "reservation.created", "reservation.confirmed", "reservation.canceled")
	enqueue(t, uow, now.Add(time.Hour), "reservation.completed")

	relay := worker.NewOutboxRelay(uow, pub, clk, cfg)

	sent, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "future job is not due yet")

	require.Len(t, pub.published, 3)
	assert.Equal(t, "reservation.created", pub.published[0].Topic)
	assert.Equal(t, 3, statusCount(store, shared.JobStatusSent))
	assert.Equal(t, 1, statusCount(store, shared.JobStatusQueued))
}

func TestOutboxRelay_RetriesThenFails(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	store := memory.NewStore(clk)
	uow := memory.NewUnitOfWork(store)
	pub := &fakePublisher{fail: true}
	cfg := config.OutboxConfig{Interval: time.Second, BatchSize: 10, MaxAttempts: 3}

	enqueue(t, uow, now, "reservation.created")
	relay := worker.NewOutboxRelay(uow, pub, clk, cfg)

	// attempt 1, retry after 1s
	_, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, statusCount(store, shared.JobStatusQueued))

	// not due yet
	_, err = relay.RunOnce(context.Background())
	require.NoError(t, err)

	// attempt 2, retry after 2s
	clk.Add(time.Second)
	_, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, statusCount(store, shared.JobStatusQueued))

	// attempt 3 gives up
	clk.Add(2 * time.Second)
	_, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, statusCount(store, shared.JobStatusFailed))
	assert.Empty(t, pub.published)
}

func TestOutboxRelay_StartStop(t *testing.T) {
	clk := clock.NewMockClock(time.Now())
	store := memory.NewStore(clk)
	relay := worker.NewOutboxRelay(memory.NewUnitOfWork(store), &fakePublisher{}, clk,
		config.OutboxConfig{Interval: 10 * time.Millisecond, BatchSize: 10, MaxAttempts: 3})

	require.NoError(t, relay.Start(context.Background()))
	require.NoError(t, relay.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, relay.Stop(ctx))
	require.NoError(t, relay.Stop(ctx))
}
