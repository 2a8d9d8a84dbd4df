package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/model"
	"github.com/amielle/duty-roster/internal/queue"
	"github.com/amielle/duty-roster/internal/repository"
	"github.com/amielle/duty-roster/internal/service"
)

// defaultMaxStudents is the slot capacity applied when a schedule is
// created without an explicit limit.
const defaultMaxStudents = 2

// AdminHandler covers the admin surface: creating schedules, the
// approve/reject decisions, the pending-approval queue and the audit
// trail.  Rejection cascades over every booking on the schedule inside
// one transaction, so a crash mid-way leaves either the fully rejected
// schedule or the untouched one, never a half-cancelled roster.
type AdminHandler struct {
	Schedules *repository.ScheduleRepo
	Bookings  *repository.BookingRepo
	Logs      *repository.DutyLogRepo
	Cache     *repository.ScheduleCache
	Pub       *service.Publisher
	Log       *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(schedules *repository.ScheduleRepo, bookings *repository.BookingRepo,
	logs *repository.DutyLogRepo, cache *repository.ScheduleCache, pub *service.Publisher, log *zap.Logger) *AdminHandler {
	if schedules == nil || bookings == nil || logs == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Schedules: schedules, Bookings: bookings, Logs: logs, Cache: cache, Pub: pub, Log: log}
}

type createScheduleReq struct {
	Date        string `json:"date"`
	ShiftStart  string `json:"shift_start"`
	ShiftEnd    string `json:"shift_end"`
	Location    string `json:"location"`
	Description string `json:"description"`
	MaxStudents int    `json:"max_students"`
}

// CreateSchedule handles POST /v1/schedules.  New schedules
// start pending and appear on the calendar immediately; bookings made
// on them stay in the pending-approval state until the schedule is
// approved.
func (h *AdminHandler) CreateSchedule(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := time.Parse(booking.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	start, err := time.Parse("15:04", req.ShiftStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shift_start must be HH:MM"})
	}
	end, err := time.Parse("15:04", req.ShiftEnd)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shift_end must be HH:MM"})
	}
	// Shifts are same-day: a schedule covers one calendar date and an
	// overnight duty is entered as two schedules, one per date, so the
	// cancellation window and the rebooking guard stay date-keyed.
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shift_end must be after shift_start; overnight duties are entered as one schedule per date"})
	}
	if req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location is required"})
	}
	if req.MaxStudents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_students cannot be negative"})
	}
	if req.MaxStudents == 0 {
		req.MaxStudents = defaultMaxStudents
	}

	ctx := c.Request().Context()
	s := &model.Schedule{
		Date:        req.Date,
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
		Location:    req.Location,
		Description: req.Description,
		MaxStudents: req.MaxStudents,
		CreatedBy:   adminID,
	}
	if err := h.Schedules.Create(ctx, s); err != nil {
		h.Log.Error("create schedule failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create schedule"})
	}
	if err := h.Logs.Insert(ctx, &model.DutyLog{
		ScheduleID:  &s.ID,
		Action:      repository.ActionScheduleCreated,
		PerformedBy: adminID,
		Notes:       fmt.Sprintf("Schedule created for %s at %s", s.Date, s.Location),
	}); err != nil {
		h.Log.Warn("audit entry for schedule creation failed", zap.Error(err))
	}
	return c.JSON(http.StatusCreated, echo.Map{"schedule": s})
}

// Approve handles POST /v1/schedules/:id/approve.  Approval is
// only valid from pending; every booked student's duty becomes
// confirmed as a consequence of the schedule status change, without
// touching booking rows.
func (h *AdminHandler) Approve(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()

	tx, err := h.Schedules.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sched, err := h.Schedules.GetByIDTx(ctx, tx, scheduleID)
	if err != nil {
		return rejectOr500(c, err, "failed to load schedule")
	}
	if sched.Status != model.ScheduleStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only pending schedules can be approved"})
	}
	if err := h.Schedules.UpdateStatusTx(ctx, tx, scheduleID, model.ScheduleStatusApproved); err != nil {
		return rejectOr500(c, err, "failed to update schedule")
	}
	students, err := h.Bookings.ActiveStudentsTx(ctx, tx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	if err := h.Logs.InsertTx(ctx, tx, &model.DutyLog{
		ScheduleID:  &scheduleID,
		Action:      repository.ActionScheduleApproved,
		PerformedBy: adminID,
		Notes:       fmt.Sprintf("Schedule for %s approved, %d booking(s) confirmed", sched.Date, len(students)),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Cache.Invalidate(ctx, scheduleID)
	h.notifyAll(c, students, queue.NotificationEvent{
		Title:   "Duty confirmed",
		Message: fmt.Sprintf("Your duty on %s at %s has been approved.", sched.Date, sched.Location),
		Type:    queue.TypeApproval,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":            "schedule approved",
		"confirmed_students": len(students),
	})
}

// Reject handles POST /v1/schedules/:id/reject.  The schedule
// moves to cancelled and every booked student on it is cancelled with
// the standard rejection reason, all in one transaction.  Rejection
// cancellations are system-initiated and do not arm the same-day
// rebooking guard for the affected students.
func (h *AdminHandler) Reject(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	now := time.Now().UTC()

	tx, err := h.Schedules.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sched, err := h.Schedules.GetByIDTx(ctx, tx, scheduleID)
	if err != nil {
		return rejectOr500(c, err, "failed to load schedule")
	}
	if sched.Status == model.ScheduleStatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "schedule is already cancelled"})
	}
	students, err := h.Bookings.CancelAllForScheduleTx(ctx, tx, scheduleID, booking.RejectionReason, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel bookings"})
	}
	if err := h.Schedules.UpdateStatusTx(ctx, tx, scheduleID, model.ScheduleStatusCancelled); err != nil {
		return rejectOr500(c, err, "failed to update schedule")
	}
	if err := h.Logs.InsertTx(ctx, tx, &model.DutyLog{
		ScheduleID:  &scheduleID,
		Action:      repository.ActionScheduleRejected,
		PerformedBy: adminID,
		Notes:       fmt.Sprintf("Schedule for %s rejected, %d booking(s) cancelled", sched.Date, len(students)),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Cache.Invalidate(ctx, scheduleID)
	h.notifyAll(c, students, queue.NotificationEvent{
		Title:   "Duty cancelled",
		Message: fmt.Sprintf("Your duty on %s at %s was cancelled: %s.", sched.Date, sched.Location, booking.RejectionReason),
		Type:    queue.TypeRejection,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"message":            "schedule rejected",
		"cancelled_bookings": len(students),
	})
}

// PendingBookings handles GET /v1/pending-bookings: the approval
// queue of booked duties on schedules still awaiting a decision.
func (h *AdminHandler) PendingBookings(c echo.Context) error {
	pending, err := h.Bookings.ListPending(c.Request().Context())
	if err != nil {
		h.Log.Error("list pending bookings failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load pending bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": pending})
}

// DutyLogs handles GET /v1/duty-logs: the most recent audit trail
// entries, newest first.
func (h *AdminHandler) DutyLogs(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	entries, err := h.Logs.ListRecent(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("list duty logs failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load logs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

// notifyAll publishes one event per student, reusing the template
// event with the user filled in.  Publish failures are already logged
// by the publisher and never affect the committed decision.
func (h *AdminHandler) notifyAll(c echo.Context, students []uint64, ev queue.NotificationEvent) {
	if h.Pub == nil {
		return
	}
	ctx := c.Request().Context()
	for _, id := range students {
		ev.UserID = id
		_ = h.Pub.Notify(ctx, ev)
	}
}
