package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/model"
	"github.com/amielle/duty-roster/internal/queue"
	"github.com/amielle/duty-roster/internal/repository"
	"github.com/amielle/duty-roster/internal/service"
)

// StudentHandler implements the booking operations available to
// students: viewing the calendar, booking a duty, cancelling it,
// marking it completed.  The critical paths run inside a transaction
// so the capacity check, the write and the audit entry commit
// together; the redis snapshot and the in-memory rebooking guard are
// advisory fast paths in front of that transaction.
type StudentHandler struct {
	Schedules *repository.ScheduleRepo
	Bookings  *repository.BookingRepo
	Marks     *repository.CancellationRepo
	Logs      *repository.DutyLogRepo
	Users     *repository.UserRepo
	Cache     *repository.ScheduleCache
	Guard     *booking.RebookGuard
	Pub       *service.Publisher
	Log       *zap.Logger
}

// NewStudentHandler constructs a StudentHandler; all repository
// dependencies must be non-nil.
func NewStudentHandler(schedules *repository.ScheduleRepo, bookings *repository.BookingRepo,
	marks *repository.CancellationRepo, logs *repository.DutyLogRepo, users *repository.UserRepo,
	cache *repository.ScheduleCache, guard *booking.RebookGuard, pub *service.Publisher, log *zap.Logger) *StudentHandler {
	if schedules == nil || bookings == nil || marks == nil || logs == nil || users == nil {
		panic("nil repository passed to NewStudentHandler")
	}
	return &StudentHandler{
		Schedules: schedules, Bookings: bookings, Marks: marks, Logs: logs, Users: users,
		Cache: cache, Guard: guard, Pub: pub, Log: log,
	}
}

// ListSchedules handles GET /v1/schedules.  It returns every schedule
// with its active bookings and refreshes the advisory slot snapshots
// as a side effect.
func (h *StudentHandler) ListSchedules(c echo.Context) error {
	ctx := c.Request().Context()
	overviews, err := h.Schedules.List(ctx)
	if err != nil {
		h.Log.Error("list schedules failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedules"})
	}
	for _, o := range overviews {
		active := make([]uint64, 0, len(o.ActiveBookings))
		for _, b := range o.ActiveBookings {
			active = append(active, b.StudentID)
		}
		h.Cache.Store(ctx, o.ID, o.MaxStudents, active)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": overviews})
}

// Book handles POST /v1/schedules/:id/bookings.  The request passes
// through three layers: the cached snapshot (fast, advisory), an
// authoritative existence query against the store, and finally the
// insert inside a locked transaction where the unique key on
// (schedule_id, active_student) settles any race the first two layers
// missed.  Local state is refreshed after every outcome, successful or
// rejected, rather than trusted from the pre-mutation snapshot.
func (h *StudentHandler) Book(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || scheduleID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	ctx := c.Request().Context()
	now := time.Now().UTC()

	sched, err := h.Schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return rejectOr500(c, err, "failed to load schedule")
	}
	if err := booking.Bookable(sched.Status); err != nil {
		return rejectOr500(c, err, "")
	}

	// Advisory fast path: the cached snapshot may be stale, so it can
	// only reject, never admit.
	if max, active, ok := h.Cache.Snapshot(ctx, scheduleID); ok {
		slot := &booking.Slot{ScheduleID: scheduleID, MaxStudents: max, Active: active}
		if err := slot.Admit(studentID); err != nil {
			return rejectOr500(c, err, "failed to check schedule")
		}
	}
	if h.Guard.Blocked(studentID, sched.Date, now) {
		return rejectOr500(c, booking.ErrRebookingBlocked, "")
	}

	// Authoritative duplicate check against the store; on a hit the
	// stale snapshot is dropped so the client's next read resyncs.
	dup, err := h.Bookings.HasActive(ctx, scheduleID, studentID)
	if err != nil {
		h.Log.Error("duplicate check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing booking"})
	}
	if dup {
		h.Cache.Invalidate(ctx, scheduleID)
		return rejectOr500(c, booking.ErrAlreadyBooked, "")
	}

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

	// Re-read everything under the lock: the schedule row serializes
	// competing capacity checks on this slot.
	locked, err := h.Schedules.GetByIDTx(ctx, tx, scheduleID)
	if err != nil {
		return rejectOr500(c, err, "failed to load schedule")
	}
	// An admin rejection may have committed between the unlocked
	// pre-check and this lock; its cascade has already cancelled every
	// booking on the slot, so admitting now would undo it.  The locked
	// read is the authoritative one.
	if err := booking.Bookable(locked.Status); err != nil {
		h.Cache.Invalidate(ctx, scheduleID)
		return rejectOr500(c, err, "")
	}
	active, err := h.Bookings.ActiveStudentsTx(ctx, tx, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count bookings"})
	}
	slot := &booking.Slot{ScheduleID: scheduleID, MaxStudents: locked.MaxStudents, Active: active}
	if err := slot.Admit(studentID); err != nil {
		h.Cache.Store(ctx, scheduleID, locked.MaxStudents, active)
		return rejectOr500(c, err, "failed to check capacity")
	}
	blocked, err := h.Marks.BlockedTx(ctx, tx, studentID, locked.Date, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check cancellation marks"})
	}
	if blocked {
		h.Guard.Arm(studentID, locked.Date, now) // repopulate the fast path
		return rejectOr500(c, booking.ErrRebookingBlocked, "")
	}

	b := &model.Booking{ScheduleID: scheduleID, StudentID: studentID}
	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		// A concurrent request won the race between the duplicate
		// check and this insert. Expected outcome, not a failure.
		h.Cache.Invalidate(ctx, scheduleID)
		return rejectOr500(c, err, "failed to create booking")
	}
	if err := h.Logs.InsertTx(ctx, tx, &model.DutyLog{
		BookingID:   &b.ID,
		ScheduleID:  &scheduleID,
		Action:      repository.ActionBooked,
		PerformedBy: studentID,
		TargetUser:  &studentID,
		Notes:       fmt.Sprintf("Student booked duty for %s", locked.Date),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Cache.Store(ctx, scheduleID, locked.MaxStudents, slot.Active)
	if h.Pub != nil {
		_ = h.Pub.Notify(ctx, queue.NotificationEvent{
			UserID:  studentID,
			Title:   "Duty booked",
			Message: fmt.Sprintf("Your duty on %s at %s is booked and awaiting admin approval.", locked.Date, locked.Location),
			Type:    queue.TypeBooking,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking": b,
		"message": "duty booked, waiting for admin approval",
	})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel handles DELETE /v1/bookings/:id.  Cancellation is refused on
// the calendar day of the duty itself.  On success the same-day
// rebooking guard is armed: the student may not book this duty date
// again until tomorrow.  The status update, the durable mark and the
// audit entry commit in one transaction.
func (h *StudentHandler) Cancel(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req cancelReq
	_ = c.Bind(&req)
	if req.Reason == "" {
		req.Reason = "Cancelled by student"
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

	b, sched, err := h.Bookings.GetWithScheduleTx(ctx, tx, bookingID)
	if err != nil {
		return rejectOr500(c, err, "failed to load booking")
	}
	if b.StudentID != studentID {
		return rejectOr500(c, repository.ErrForbidden, "")
	}
	if err := booking.Cancel(b, sched.Date, req.Reason, now); err != nil {
		return rejectOr500(c, err, "failed to cancel booking")
	}
	if err := h.Bookings.UpdateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := h.Marks.MarkTx(ctx, tx, studentID, sched.Date, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record cancellation"})
	}
	if err := h.Logs.InsertTx(ctx, tx, &model.DutyLog{
		BookingID:   &b.ID,
		ScheduleID:  &b.ScheduleID,
		Action:      repository.ActionCancelled,
		PerformedBy: studentID,
		TargetUser:  &studentID,
		Notes:       fmt.Sprintf("Student cancelled duty for %s: %s", sched.Date, req.Reason),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Guard.Arm(studentID, sched.Date, now)
	h.Guard.Sweep(now)
	// Release the freed seat from the advisory snapshot so the next
	// booking attempt sees the capacity without a full reload; with no
	// snapshot to patch, drop the key and let the next list rebuild it.
	if max, active, ok := h.Cache.Snapshot(ctx, b.ScheduleID); ok {
		slot := &booking.Slot{ScheduleID: b.ScheduleID, MaxStudents: max, Active: active}
		slot.Release(studentID)
		h.Cache.Store(ctx, b.ScheduleID, max, slot.Active)
	} else {
		h.Cache.Invalidate(ctx, b.ScheduleID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "duty cancelled; you cannot book another duty for this date today",
	})
}

// Complete handles POST /v1/bookings/:id/complete.  Completion is
// terminal and enables certificate issuance; the certificate payload
// returned here is rendered client-side.
func (h *StudentHandler) Complete(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
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

	b, sched, err := h.Bookings.GetWithScheduleTx(ctx, tx, bookingID)
	if err != nil {
		return rejectOr500(c, err, "failed to load booking")
	}
	if b.StudentID != studentID {
		return rejectOr500(c, repository.ErrForbidden, "")
	}
	if err := booking.Complete(b, now); err != nil {
		return rejectOr500(c, err, "failed to complete booking")
	}
	if err := h.Bookings.UpdateTx(ctx, tx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := h.Logs.InsertTx(ctx, tx, &model.DutyLog{
		BookingID:   &b.ID,
		ScheduleID:  &b.ScheduleID,
		Action:      repository.ActionCompleted,
		PerformedBy: studentID,
		TargetUser:  &studentID,
		Notes:       fmt.Sprintf("Student completed duty for %s", sched.Date),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	u, err := h.Users.GetByID(ctx, studentID)
	if err != nil && err != sql.ErrNoRows {
		h.Log.Warn("load student for certificate failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "duty marked as completed",
		"certificate": echo.Map{
			"serial":       uuid.NewString(),
			"booking_id":   b.ID,
			"student_name": u.FullName,
			"duty_date":    sched.Date,
			"shift":        sched.ShiftStart + "-" + sched.ShiftEnd,
			"location":     sched.Location,
			"completed_at": b.CompletedAt,
		},
	})
}

// MyDuties handles GET /v1/my-duties.  It returns the student's
// bookings with schedules and the derived confirmation state.
func (h *StudentHandler) MyDuties(c echo.Context) error {
	studentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	duties, err := h.Bookings.ListByStudent(c.Request().Context(), studentID)
	if err != nil {
		h.Log.Error("list duties failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load duties"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": duties})
}
