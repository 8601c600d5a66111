package components

import (
	"log/slog"

	"github.com/desidobreva/CinemaReservations/internal/infra/events"
	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"
	"github.com/desidobreva/CinemaReservations/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewOutboxRelay,
	),
	fx.Invoke(startOutboxRelay),
)

func NewOutboxRelay(uow shared.UnitOfWork, publisher events.Publisher, clk clock.Clock, cfg config.Config) *worker.OutboxRelay {
	return worker.NewOutboxRelay(uow, publisher, clk, cfg.Outbox)
}

func startOutboxRelay(lc fx.Lifecycle, relay *worker.OutboxRelay, cfg config.Config) {
	if !cfg.Outbox.Enabled {
		slog.Info("outbox relay disabled")
		return
	}
	lc.Append(fx.StartStopHook(relay.Start, relay.Stop))
}
