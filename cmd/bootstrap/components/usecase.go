package components

import (
	"context"

	"github.com/desidobreva/CinemaReservations/internal/pkg/clock"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/pkg/jwt"
	"github.com/desidobreva/CinemaReservations/internal/usecase"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
	fx.Invoke(ensureAdmin),
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(s *jwt.Service) commands.TokenIssuer {
		return s
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewReservationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewReservationQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func ensureAdmin(lc fx.Lifecycle, cfg config.Config, authCommands commands.AuthCommands) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return authCommands.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		},
	})
}
