// Package api assembles the HTTP application from its dependencies.
package api

import (
	"time"

	"github.com/eduflow/eduflow-server/internal/api/handlers"
	"github.com/eduflow/eduflow-server/internal/api/router"
	"github.com/eduflow/eduflow-server/internal/auth"
	"github.com/eduflow/eduflow-server/internal/config"
	"github.com/eduflow/eduflow-server/internal/logging"
	"github.com/eduflow/eduflow-server/internal/metrics"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/reporting"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies are constructed by the caller and owned by it; NewApp only wires them.
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Accounts       *storage.CRMStore
	Developers     *storage.AppStore
	Reports        reporting.Source
	RateLimitStore middleware.RateLimitStore
}

func NewApp(deps Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		AppName:      "EduFlow",
		ErrorHandler: handlers.ErrorHandler(deps.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  65 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Server.Environment != "production"}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(deps.Metrics.Middleware())
	app.Use(logging.Middleware(deps.Logger))
	for _, h := range middleware.CORS(cfg.Server.CORSOrigins) {
		app.Use(h)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AdminExpiration, cfg.JWT.DeveloperExpiration)
	authenticator := auth.NewAuthenticator(deps.Accounts, deps.Developers)
	resolver := auth.NewResolver(tokens, deps.Accounts, deps.Developers)

	router.NewRouter(
		app,
		handlers.NewAuthHandler(authenticator, tokens, deps.Metrics, deps.Logger),
		handlers.NewSuperAdminHandler(deps.Accounts, auth.PasswordScheme(cfg.Admin.PasswordScheme), deps.Logger),
		handlers.NewDashboardHandler(reporting.NewService(deps.Reports)),
		handlers.NewHealthHandler(deps.Developers, deps.Logger),
		middleware.NewAuthMiddleware(resolver),
		middleware.NewRateLimiter(deps.RateLimitStore, deps.Logger),
		middleware.RateLimitConfig{
			Enabled: cfg.Server.RateLimit.Enabled,
			Limit:   cfg.Server.RateLimit.Limit,
			Window:  cfg.Server.RateLimit.Window,
		},
		deps.Metrics.Handler(),
	).SetupRoutes()

	return app
}
