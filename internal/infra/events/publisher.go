package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
)

const (
	DriverLog   = "log"
	DriverAMQP  = "amqp"
	DriverKafka = "kafka"
)

var ErrUnknownDriver = errs.New("unknown events driver")

// Publisher delivers one outbox job to the broker. Publish must be safe to
// retry; consumers dedupe on the job id.
type Publisher interface {
	Publish(ctx context.Context, job shared.NotificationJob) error
	Close() error
}

// partitionKey keeps every event of one reservation on the same partition.
func partitionKey(job shared.NotificationJob) string {
	var head struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := json.Unmarshal(job.Payload, &head); err != nil || head.ReservationID == "" {
		return job.ID.String()
	}
	return head.ReservationID
}

type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, job shared.NotificationJob) error {
	slog.InfoContext(ctx, "reservation event",
		"job_id", job.ID,
		"topic", job.Topic,
		"key", partitionKey(job),
		"payload", json.RawMessage(job.Payload))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
