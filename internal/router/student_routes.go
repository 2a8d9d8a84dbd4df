package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amielle/duty-roster/internal/handler"
	"github.com/amielle/duty-roster/internal/middleware"
	"github.com/amielle/duty-roster/internal/model"
)

// RegisterStudent registers student-scoped endpoints under /v1.
// Students book duties, cancel them, mark them completed and view
// their own roster.  The shared calendar is readable by every
// authenticated role and sits behind the response cache, since each
// student polls it while choosing a slot.
func RegisterStudent(e *echo.Echo, h *handler.StudentHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	calendar := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent, model.RoleAdmin, model.RoleParent),
	)
	if cacheMW != nil {
		calendar.GET("/schedules", h.ListSchedules, cacheMW)
	} else {
		calendar.GET("/schedules", h.ListSchedules)
	}

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent),
	)
	g.POST("/schedules/:id/bookings", h.Book)
	g.DELETE("/bookings/:id", h.Cancel)
	g.POST("/bookings/:id/complete", h.Complete)
	g.GET("/my-duties", h.MyDuties)
}
