package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/repository"
)

// NotificationHandler exposes the notification inbox written by the
// queue consumer.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Log           *zap.Logger
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(repo *repository.NotificationRepo, log *zap.Logger) *NotificationHandler {
	if repo == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: repo, Log: log}
}

// List handles GET /v1/notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Notifications.ListByUser(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("list notifications failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MarkRead handles POST /v1/notifications/:id/read.  Ownership is
// enforced in the update itself; touching someone else's notification
// returns 403.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
		return rejectOr500(c, err, "failed to update notification")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification marked as read"})
}
