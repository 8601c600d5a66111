package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/IBM/sarama"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaConfig is the producer setup: acks from all replicas and a hash
// partitioner so each reservation keeps its order.
func NewKafkaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 10 * time.Second
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig())
	if err != nil {
		return nil, errs.Wrap(err, "failed to create Kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, job shared.NotificationJob) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(partitionKey(job)),
		Value: sarama.ByteEncoder(job.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(job.Topic)},
			{Key: []byte("job_id"), Value: []byte(job.ID.String())},
		},
		Timestamp: job.RunAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errs.Wrap(err, "failed to send event to Kafka")
	}

	slog.DebugContext(ctx, "event published to kafka",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"event_type", job.Topic)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
