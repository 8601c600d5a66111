package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
)

const maxRetryDelay = 5 * time.Minute

type Publisher interface {
	Publish(ctx context.Context, job shared.NotificationJob) error
}

// OutboxRelay drains queued notification jobs into the publisher. Jobs are
// claimed and marked in the same unit of work, so a crash before commit
// leaves them queued and they are delivered again.
type OutboxRelay struct {
	uow       shared.UnitOfWork
	publisher Publisher
	clock     clock.Clock
	cfg       config.OutboxConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewOutboxRelay(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, cfg config.OutboxConfig) *OutboxRelay {
	return &OutboxRelay{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// RunOnce handles one batch and reports how many jobs were sent.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	sent := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		now := r.clock.Now()

		jobs, err := tx.Notifications().ClaimPending(ctx, now, r.cfg.BatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			status, lastError, runAt := r.deliver(ctx, job, now)
			if err := tx.Notifications().UpdateJobStatus(ctx, job.ID, status, lastError, runAt); err != nil {
				return err
			}
			if status == shared.JobStatusSent {
				sent++
			}
		}
		return nil
	})
	return sent, err
}

func (r *OutboxRelay) deliver(ctx context.Context, job shared.NotificationJob, now time.Time) (string, *string, time.Time) {
	err := r.publisher.Publish(ctx, job)
	if err == nil {
		return shared.JobStatusSent, nil, now
	}

	msg := err.Error()
	attempt := job.Attempts + 1
	if attempt >= r.cfg.MaxAttempts {
		slog.Error("giving up on outbox job", "job_id", job.ID, "topic", job.Topic, "attempts", attempt, "error", msg)
		return shared.JobStatusFailed, &msg, now
	}

	slog.Warn("outbox publish failed, will retry", "job_id", job.ID, "topic", job.Topic, "attempts", attempt, "error", msg)
	return shared.JobStatusQueued, &msg, now.Add(r.retryDelay(attempt))
}

func (r *OutboxRelay) retryDelay(attempt int32) time.Duration {
	delay := r.cfg.Interval
	for i := int32(1); i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func (r *OutboxRelay) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
	slog.Info("outbox relay started", "interval", r.cfg.Interval.String(), "batch_size", r.cfg.BatchSize)
	return nil
}

func (r *OutboxRelay) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		slog.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *OutboxRelay) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Error("outbox relay batch failed", "error", err.Error())
			}
		}
	}
}
