package bootstrap

import (
	"log/slog"

	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

// NewLogger also installs the handler as the slog default.
func NewLogger(cfg config.Config) *slog.Logger {
	return middleware.NewLogger(cfg.Log).GetSlogLogger()
}
