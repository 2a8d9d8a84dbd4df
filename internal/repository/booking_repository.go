package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/model"
)

// BookingRepo provides CRUD operations for schedule_students rows.
// The critical write paths (create, cancel, cascade) run inside a
// transaction owned by the handler so that the capacity check, the
// insert and the audit entry commit or roll back together.  The
// unique key over (schedule_id, active_student) is the final
// correctness backstop for races the in-process checks miss.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, schedule_id, student_id, status, booking_time, cancelled_at, cancellation_reason, completed_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	var cancelledAt, completedAt sql.NullTime
	var reason sql.NullString
	if err := row.Scan(&b.ID, &b.ScheduleID, &b.StudentID, &b.Status, &b.BookingTime,
		&cancelledAt, &reason, &completedAt); err != nil {
		return err
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if reason.Valid {
		s := reason.String
		b.CancellationReason = &s
	}
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	return nil
}

// ActiveStudentsTx returns the student IDs holding non-cancelled
// bookings on the schedule, read under the caller's transaction with a
// row lock.  Together with the FOR UPDATE lock on the schedule row
// this serializes concurrent capacity checks on the same slot.
func (r *BookingRepo) ActiveStudentsTx(ctx context.Context, tx *sql.Tx, scheduleID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT student_id FROM schedule_students WHERE schedule_id = ? AND status != 'cancelled' FOR UPDATE`,
		scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasActive is the authoritative duplicate check issued outside a
// transaction: it asks the store whether the student currently holds a
// non-cancelled booking for the schedule.  The local snapshot may be
// stale; this query is not.
func (r *BookingRepo) HasActive(ctx context.Context, scheduleID, studentID uint64) (bool, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM schedule_students WHERE schedule_id = ? AND student_id = ? AND status != 'cancelled' LIMIT 1`,
		scheduleID, studentID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new booking within the caller's transaction and
// populates the generated ID and booking_time on the given struct.  A
// duplicate-key violation means another request won the race between
// the duplicate check and this insert; it is reported as
// booking.ErrAlreadyBooked so callers treat it as an expected outcome
// rather than a hard failure.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO schedule_students (schedule_id, student_id, status) VALUES (?, ?, 'booked')`
	res, err := tx.ExecContext(ctx, q, b.ScheduleID, b.StudentID)
	if err != nil {
		if isDuplicateKey(err) {
			return booking.ErrAlreadyBooked
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM schedule_students WHERE id = ?`, b.ID), b)
}

// GetWithScheduleTx loads a booking and its parent schedule inside the
// caller's transaction, locking the booking row.  Cancellation and
// completion go through here so the status transition cannot race.
// Returns booking.ErrBookingNotFound when the booking does not exist.
func (r *BookingRepo) GetWithScheduleTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, *model.Schedule, error) {
	var b model.Booking
	err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM schedule_students WHERE id = ? FOR UPDATE`, bookingID), &b)
	if err == sql.ErrNoRows {
		return nil, nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var s model.Schedule
	err = scanSchedule(tx.QueryRowContext(ctx,
		`SELECT `+scheduleCols+` FROM schedules WHERE id = ?`, b.ScheduleID), &s)
	if err != nil {
		return nil, nil, err
	}
	return &b, &s, nil
}

// UpdateTx persists a booking's status fields after a state-machine
// transition has been applied in memory.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `UPDATE schedule_students
	           SET status = ?, cancelled_at = ?, cancellation_reason = ?, completed_at = ?
	           WHERE id = ?`
	var cancelledAt, completedAt any
	var reason any
	if b.CancelledAt != nil {
		cancelledAt = b.CancelledAt.UTC().Format("2006-01-02 15:04:05")
	}
	if b.CancellationReason != nil {
		reason = *b.CancellationReason
	}
	if b.CompletedAt != nil {
		completedAt = b.CompletedAt.UTC().Format("2006-01-02 15:04:05")
	}
	_, err := tx.ExecContext(ctx, q, b.Status, cancelledAt, reason, completedAt, b.ID)
	return err
}

// CancelAllForScheduleTx applies the rejection cascade: every booked
// row under the schedule is loaded under a row lock, transitioned
// through the booking state machine with the given reason, and written
// back.  Terminal rows are skipped.  It returns the IDs of the
// affected students so the caller can notify them after commit.  The
// caller updates the schedule status in the same transaction, making
// the cascade atomic: either all bookings and the schedule are
// cancelled, or none are.
func (r *BookingRepo) CancelAllForScheduleTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, reason string, now time.Time) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+bookingCols+` FROM schedule_students WHERE schedule_id = ? AND status = 'booked' FOR UPDATE`,
		scheduleID)
	if err != nil {
		return nil, err
	}
	var affected []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			rows.Close()
			return nil, err
		}
		affected = append(affected, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	var students []uint64
	for i := range affected {
		b := &affected[i]
		if err := booking.ForceCancel(b, reason, now); err != nil {
			continue
		}
		if err := r.UpdateTx(ctx, tx, b); err != nil {
			return nil, err
		}
		students = append(students, b.StudentID)
	}
	return students, nil
}

// StudentDuty is a booking joined with its schedule plus the derived
// presentation state ("pending_approval", "confirmed", "cancelled",
// "completed").
type StudentDuty struct {
	Booking  model.Booking  `json:"booking"`
	Schedule model.Schedule `json:"schedule"`
	State    string         `json:"state"`
}

const dutyQuery = `SELECT ss.id, ss.schedule_id, ss.student_id, ss.status, ss.booking_time,
       ss.cancelled_at, ss.cancellation_reason, ss.completed_at,
       s.id, DATE_FORMAT(s.date, '%Y-%m-%d'), TIME_FORMAT(s.shift_start, '%H:%i'),
       TIME_FORMAT(s.shift_end, '%H:%i'), s.location, s.description, s.max_students, s.status,
       s.created_by, s.created_at, s.updated_at
FROM schedule_students ss
JOIN schedules s ON s.id = ss.schedule_id`

func scanDuty(rows *sql.Rows) (StudentDuty, error) {
	var d StudentDuty
	var cancelledAt, completedAt sql.NullTime
	var reason sql.NullString
	err := rows.Scan(
		&d.Booking.ID, &d.Booking.ScheduleID, &d.Booking.StudentID, &d.Booking.Status, &d.Booking.BookingTime,
		&cancelledAt, &reason, &completedAt,
		&d.Schedule.ID, &d.Schedule.Date, &d.Schedule.ShiftStart, &d.Schedule.ShiftEnd,
		&d.Schedule.Location, &d.Schedule.Description, &d.Schedule.MaxStudents, &d.Schedule.Status,
		&d.Schedule.CreatedBy, &d.Schedule.CreatedAt, &d.Schedule.UpdatedAt,
	)
	if err != nil {
		return d, err
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		d.Booking.CancelledAt = &t
	}
	if reason.Valid {
		s := reason.String
		d.Booking.CancellationReason = &s
	}
	if completedAt.Valid {
		t := completedAt.Time
		d.Booking.CompletedAt = &t
	}
	d.State = booking.DerivedState(d.Booking.Status, d.Schedule.Status)
	return d, nil
}

// ListByStudent returns all of the student's bookings, newest first,
// each joined with its schedule and derived state.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64) ([]StudentDuty, error) {
	rows, err := r.db.QueryContext(ctx,
		dutyQuery+` WHERE ss.student_id = ? ORDER BY ss.booking_time DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	duties := make([]StudentDuty, 0)
	for rows.Next() {
		d, err := scanDuty(rows)
		if err != nil {
			return nil, err
		}
		duties = append(duties, d)
	}
	return duties, rows.Err()
}

// PendingBooking is one booked row on a schedule still awaiting admin
// approval, with enough student detail for the approval queue.
type PendingBooking struct {
	BookingID     uint64    `json:"booking_id"`
	ScheduleID    uint64    `json:"schedule_id"`
	Date          string    `json:"date"`
	Location      string    `json:"location"`
	StudentID     uint64    `json:"student_id"`
	FullName      string    `json:"full_name"`
	StudentNumber string    `json:"student_number"`
	BookingTime   time.Time `json:"booking_time"`
}

// ListPending returns booked rows whose parent schedule is still
// pending, newest booking first.
func (r *BookingRepo) ListPending(ctx context.Context) ([]PendingBooking, error) {
	const q = `SELECT ss.id, ss.schedule_id, DATE_FORMAT(s.date, '%Y-%m-%d'), s.location,
	                  ss.student_id, u.full_name, COALESCE(u.student_number, ''), ss.booking_time
	           FROM schedule_students ss
	           JOIN schedules s ON s.id = ss.schedule_id
	           JOIN users u ON u.id = ss.student_id
	           WHERE ss.status = 'booked' AND s.status = 'pending'
	           ORDER BY ss.booking_time DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pending := make([]PendingBooking, 0)
	for rows.Next() {
		var p PendingBooking
		if err := rows.Scan(&p.BookingID, &p.ScheduleID, &p.Date, &p.Location,
			&p.StudentID, &p.FullName, &p.StudentNumber, &p.BookingTime); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// ChildDuty is a linked student's duty as shown to a parent.
type ChildDuty struct {
	StudentID   uint64 `json:"student_id"`
	StudentName string `json:"student_name"`
	StudentDuty
}

// ListForParent returns the duties of every student linked to the
// parent through parent_links, newest first.  Parents get a read-only
// view; there is no mutation path from this query.
func (r *BookingRepo) ListForParent(ctx context.Context, parentID uint64) ([]ChildDuty, error) {
	const q = `SELECT u.id, u.full_name,
	       ss.id, ss.schedule_id, ss.student_id, ss.status, ss.booking_time,
	       ss.cancelled_at, ss.cancellation_reason, ss.completed_at,
	       s.id, DATE_FORMAT(s.date, '%Y-%m-%d'), TIME_FORMAT(s.shift_start, '%H:%i'),
	       TIME_FORMAT(s.shift_end, '%H:%i'), s.location, s.description, s.max_students, s.status,
	       s.created_by, s.created_at, s.updated_at
	FROM parent_links pl
	JOIN users u ON u.id = pl.student_id
	JOIN schedule_students ss ON ss.student_id = pl.student_id
	JOIN schedules s ON s.id = ss.schedule_id
	WHERE pl.parent_id = ?
	ORDER BY s.date DESC, ss.booking_time DESC`
	rows, err := r.db.QueryContext(ctx, q, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	duties := make([]ChildDuty, 0)
	for rows.Next() {
		var d ChildDuty
		var cancelledAt, completedAt sql.NullTime
		var reason sql.NullString
		if err := rows.Scan(&d.StudentID, &d.StudentName,
			&d.Booking.ID, &d.Booking.ScheduleID, &d.Booking.StudentID, &d.Booking.Status, &d.Booking.BookingTime,
			&cancelledAt, &reason, &completedAt,
			&d.Schedule.ID, &d.Schedule.Date, &d.Schedule.ShiftStart, &d.Schedule.ShiftEnd,
			&d.Schedule.Location, &d.Schedule.Description, &d.Schedule.MaxStudents, &d.Schedule.Status,
			&d.Schedule.CreatedBy, &d.Schedule.CreatedAt, &d.Schedule.UpdatedAt); err != nil {
			return nil, err
		}
		if cancelledAt.Valid {
			t := cancelledAt.Time
			d.Booking.CancelledAt = &t
		}
		if reason.Valid {
			s := reason.String
			d.Booking.CancellationReason = &s
		}
		if completedAt.Valid {
			t := completedAt.Time
			d.Booking.CompletedAt = &t
		}
		d.State = booking.DerivedState(d.Booking.Status, d.Schedule.Status)
		duties = append(duties, d)
	}
	return duties, rows.Err()
}
