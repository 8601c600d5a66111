package bootstrap

import (
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) (*jwt.Service, error) {
	duration, err := cfg.JWT.TokenDuration()
	if err != nil {
		return nil, errs.Wrap(err, "invalid JWT_DURATION")
	}
	if duration <= 0 {
		return nil, errs.New("JWT_DURATION must be positive")
	}

	return jwt.NewService(cfg.JWT.Secret, duration), nil
}
