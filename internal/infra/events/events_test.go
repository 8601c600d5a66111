//go:build unit

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(payload string) shared.NotificationJob {
	return shared.NotificationJob{
		ID:      uuid.New(),
		Kind:    "reservation_event",
		Topic:   "reservation.created",
		Payload: []byte(payload),
		RunAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPartitionKey(t *testing.T) {
	resID := uuid.New()

	job := newJob(`{"reservation_id":"` + resID.String() + `","status":"PENDING"}`)
	assert.Equal(t, resID.String(), partitionKey(job))

	broken := newJob(`not json`)
	assert.Equal(t, broken.ID.String(), partitionKey(broken))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	resID := uuid.New()
	job := newJob(`{"reservation_id":"` + resID.String() + `"}`)

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != resID.String() {
			return errors.New("unexpected key " + string(key))
		}
		if msg.Topic != "reservation-events" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		return nil
	})

	p := NewKafkaPublisherWithProducer(producer, "reservation-events")
	require.NoError(t, p.Publish(context.Background(), job))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisherWithProducer(producer, "reservation-events")
	err := p.Publish(context.Background(), newJob(`{}`))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher()
	assert.NoError(t, p.Publish(context.Background(), newJob(`{"reservation_id":"x"}`)))
	assert.NoError(t, p.Close())
}
