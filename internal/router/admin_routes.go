package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amielle/duty-roster/internal/handler"
	"github.com/amielle/duty-roster/internal/middleware"
	"github.com/amielle/duty-roster/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1.  Admins
// create schedules, decide approve/reject, review the pending queue
// and read the audit trail.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/schedules", h.CreateSchedule)
	g.POST("/schedules/:id/approve", h.Approve)
	g.POST("/schedules/:id/reject", h.Reject)
	g.GET("/pending-bookings", h.PendingBookings)
	g.GET("/duty-logs", h.DutyLogs)
}
