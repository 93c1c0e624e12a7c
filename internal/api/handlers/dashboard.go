package handlers

import (
	"context"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/reporting"
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the tenant dashboard. The center id always comes from the
// resolved principal, never from the request.
type DashboardHandler struct {
	reports *reporting.Service
}

func NewDashboardHandler(reports *reporting.Service) *DashboardHandler {
	return &DashboardHandler{
		reports: reports,
	}
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch dashboard stats.", h.reports.Stats)
}

func (h *DashboardHandler) EnrollmentTrend(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch enrollment trend.", h.reports.EnrollmentTrend)
}

func (h *DashboardHandler) PaymentsTrend(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch payments trend.", h.reports.PaymentsTrend)
}

func (h *DashboardHandler) StudentStatus(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch student status distribution.", h.reports.StudentStatus)
}

func (h *DashboardHandler) StudentOverview(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch student overview.", h.reports.StudentOverview)
}

func (h *DashboardHandler) Upcoming(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch upcoming events.", h.reports.Upcoming)
}

func (h *DashboardHandler) RecentActivity(c *fiber.Ctx) error {
	return serveReport(c, "Failed to fetch recent activity.", h.reports.RecentActivity)
}

func serveReport[T any](c *fiber.Ctx, failure string, query func(context.Context, int64) (T, error)) error {
	admin, ok := middleware.TenantAdminFrom(c)
	if !ok {
		return apperror.ErrInvalidSession
	}

	result, err := query(c.UserContext(), admin.CenterID)
	if err != nil {
		return apperror.Internal(err, failure)
	}
	return c.JSON(result)
}
