package router

import (
	"github.com/eduflow/eduflow-server/internal/api/handlers"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/gofiber/fiber/v2"
)

type Router struct {
	app               *fiber.App
	authHandler       *handlers.AuthHandler
	superAdminHandler *handlers.SuperAdminHandler
	dashboardHandler  *handlers.DashboardHandler
	healthHandler     *handlers.HealthHandler
	authMiddleware    *middleware.AuthMiddleware
	rateLimiter       *middleware.RateLimiter
	loginLimit        middleware.RateLimitConfig
	metricsHandler    fiber.Handler
}

func NewRouter(
	app *fiber.App,
	authHandler *handlers.AuthHandler,
	superAdminHandler *handlers.SuperAdminHandler,
	dashboardHandler *handlers.DashboardHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	loginLimit middleware.RateLimitConfig,
	metricsHandler fiber.Handler,
) *Router {
	return &Router{
		app:               app,
		authHandler:       authHandler,
		superAdminHandler: superAdminHandler,
		dashboardHandler:  dashboardHandler,
		healthHandler:     healthHandler,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		loginLimit:        loginLimit,
		metricsHandler:    metricsHandler,
	}
}

func (r *Router) SetupRoutes() {
	// Public routes
	r.app.Get("/metrics", r.metricsHandler)
	r.app.Get("/api/health", r.healthHandler.Health)
	r.app.Post("/api/auth/login", r.rateLimiter.RateLimit(r.loginLimit), r.authHandler.Login)
	r.app.Post("/api/auth/logout", r.authHandler.Logout)
	r.app.Post("/api/dev/auth/login", r.rateLimiter.RateLimit(r.loginLimit), r.authHandler.DevLogin)

	// Tenant administrators
	tenant := r.authMiddleware.Require(models.PrincipalTenantAdmin)
	r.app.Get("/api/auth/me", tenant, r.authHandler.Me)

	dashboard := r.app.Group("/api/dashboard", tenant)
	dashboard.Get("/stats", r.dashboardHandler.Stats)
	dashboard.Get("/enrollment-trend", r.dashboardHandler.EnrollmentTrend)
	dashboard.Get("/payments-trend", r.dashboardHandler.PaymentsTrend)
	dashboard.Get("/student-status", r.dashboardHandler.StudentStatus)
	dashboard.Get("/student-overview", r.dashboardHandler.StudentOverview)
	dashboard.Get("/upcoming", r.dashboardHandler.Upcoming)
	dashboard.Get("/recent-activity", r.dashboardHandler.RecentActivity)

	// Developer portal
	developer := r.authMiddleware.Require(models.PrincipalDeveloper)
	r.app.Get("/api/dev/auth/me", developer, r.authHandler.DevMe)
	r.app.Get("/api/dev/stats", developer, r.superAdminHandler.Stats)

	superAdmins := r.app.Group("/api/dev/superadmins", developer)
	superAdmins.Get("/", r.superAdminHandler.List)
	superAdmins.Post("/", r.superAdminHandler.Create)
	superAdmins.Patch("/:id", r.superAdminHandler.Update)
	superAdmins.Delete("/:id", r.superAdminHandler.Delete)
}
