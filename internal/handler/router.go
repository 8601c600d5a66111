package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	"github.com/desidobreva/CinemaReservations/internal/handler/api"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/handler/middleware"
	"github.com/desidobreva/CinemaReservations/internal/pkg/config"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth        *api.AuthHandler
	Reservation *api.ReservationHandler
	Provider    *api.ProviderHandler
	Admin       *api.AdminHandler
	Screening   *api.ScreeningHandler
}

// NewRouter installs middleware and routes on engine. rdb may be nil, which
// turns rate limiting off.
func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, rdb *redis.Client) error {
	if err := registerValidations(); err != nil {
		return err
	}
	setupMiddleware(engine, cfg)
	setupRoutes(engine, h, authMiddleware, middleware.RateLimit(cfg.RateLimit, rdb))
	return nil
}

func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errs.New("unexpected gin validator engine")
	}
	return reqdto.RegisterValidations(v)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, rateLimit gin.HandlerFunc) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.GET("/health", healthCheck)
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservation.Create, Mw: []gin.HandlerFunc{rateLimit}},
				{Method: http.MethodGet, Path: "/me", Handler: h.Reservation.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetByID},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.Cancel},
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: h.Reservation.ConfirmPayment},
				{Method: http.MethodPost, Path: "/:id/reschedule", Handler: h.Reservation.Reschedule, Mw: []gin.HandlerFunc{rateLimit}},
			})
		}

		provider := apiGroup.Group("/provider")
		provider.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleProvider))
		{
			addRoutes(provider, []route{
				{Method: http.MethodGet, Path: "/reservations", Handler: h.Provider.ListIncoming},
				{Method: http.MethodPost, Path: "/reservations/:id/approve", Handler: h.Provider.Approve},
				{Method: http.MethodPost, Path: "/reservations/:id/decline", Handler: h.Provider.Decline},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			adminOnly := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/reservations/:id/confirm", Handler: h.Admin.Confirm, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPost, Path: "/reservations/:id/complete", Handler: h.Admin.Complete, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodDelete, Path: "/reservations/:id", Handler: h.Admin.Delete, Mw: []gin.HandlerFunc{adminOnly}},
				{
					Method:  http.MethodPost,
					Path:    "/complete-past-reservations",
					Handler: h.Admin.CompletePast,
					Mw:      []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleProvider)},
				},
			})
		}

		screenings := apiGroup.Group("/screenings")
		{
			addRoutes(screenings, []route{
				{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Screening.Availability},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

// chainHandlers runs route-level middleware inline. Middleware here must not
// rely on c.Next() to reach the handler.
func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
