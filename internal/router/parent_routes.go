package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amielle/duty-roster/internal/handler"
	"github.com/amielle/duty-roster/internal/middleware"
	"github.com/amielle/duty-roster/internal/model"
)

// RegisterParent registers PARENT-scoped endpoints under /v1.  Parents
// get a read-only view of their linked students' duties; the only
// write is the link itself.
func RegisterParent(e *echo.Echo, h *handler.ParentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleParent),
	)
	g.GET("/children/duties", h.ChildrenDuties)
	g.POST("/children", h.LinkChild)
}
