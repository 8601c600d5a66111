package components

import (
	"github.com/desidobreva/CinemaReservations/internal/handler"
	"github.com/desidobreva/CinemaReservations/internal/handler/api"
	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewReservationHandler,
		api.NewProviderHandler,
		api.NewAdminHandler,
		api.NewScreeningHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

type handlerParams struct {
	fx.In

	Auth        *api.AuthHandler
	Reservation *api.ReservationHandler
	Provider    *api.ProviderHandler
	Admin       *api.AdminHandler
	Screening   *api.ScreeningHandler
}

func NewHandlers(p handlerParams) handler.Handlers {
	return handler.Handlers{
		Auth:        p.Auth,
		Reservation: p.Reservation,
		Provider:    p.Provider,
		Admin:       p.Admin,
		Screening:   p.Screening,
	}
}
