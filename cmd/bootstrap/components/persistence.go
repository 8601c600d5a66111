package components

import (
	"github.com/desidobreva/CinemaReservations/internal/infra/cache"
	"github.com/desidobreva/CinemaReservations/internal/infra/readstore"
	sqlc "github.com/desidobreva/CinemaReservations/internal/infra/sqlc/generated"
	"github.com/desidobreva/CinemaReservations/internal/infra/uow"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/usecase/commands"
	"github.com/desidobreva/CinemaReservations/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
	cacheModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Reservation
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.ReservationViewQueries)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewStore)),
		),
		// Screening
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.ScreeningReadQueries)),
		),
		fx.Annotate(
			readstore.NewScreeningReadStore,
			fx.As(new(queries.AvailabilityStore)),
		),
		// User
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.UserReadQueries)),
		),
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
	),
)

// Write-side repositories are built per transaction inside the unit of work.
var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

var cacheModule = fx.Module("persistence/cache",
	fx.Provide(
		fx.Annotate(
			NewAvailabilityCache,
			fx.As(new(queries.AvailabilityCache)),
			fx.As(new(commands.AvailabilityInvalidator)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlc.Queries {
	return sqlc.New()
}

func NewDBTX(pool *pgxpool.Pool) sqlc.DBTX {
	return pool
}

func NewAvailabilityCache(rdb *redis.Client, cfg config.Config) *cache.AvailabilityCache {
	return cache.NewAvailabilityCache(rdb, cfg.Redis.AvailabilityTTL)
}
