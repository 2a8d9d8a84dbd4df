package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/repository"
)

// getUserID extracts the user_id stored by the JWT middleware and
// converts it to uint64.  JWT numeric claims decode as float64, so a
// few representations must be accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// domainStatus maps business-rule rejections to HTTP status codes.
// These are expected outcomes, not failures: the booking was refused
// for a reason the user can understand and act on.  Anything not
// listed here is a store or transport error and surfaces as a 500.
func domainStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, booking.ErrScheduleNotFound), errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, booking.ErrScheduleCancelled),
		errors.Is(err, booking.ErrScheduleFull),
		errors.Is(err, booking.ErrAlreadyBooked),
		errors.Is(err, booking.ErrRebookingBlocked),
		errors.Is(err, booking.ErrCancellationWindowClosed),
		errors.Is(err, booking.ErrBookingClosed),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, true
	}
	return 0, false
}

// rejectOr500 writes a business rejection as its mapped status with
// the rule's message, or a generic 500 for unexpected store errors.
func rejectOr500(c echo.Context, err error, fallback string) error {
	if code, ok := domainStatus(err); ok {
		return c.JSON(code, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
