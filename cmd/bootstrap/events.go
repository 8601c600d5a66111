package bootstrap

import (
	"context"

	"github.com/desidobreva/CinemaReservations/internal/infra/events"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config) (events.Publisher, error) {
	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case events.DriverLog, "":
		return events.NewLogPublisher(), nil
	case events.DriverAMQP:
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case events.DriverKafka:
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return nil, errs.Wrap(events.ErrUnknownDriver, cfg.Driver)
	}
}
