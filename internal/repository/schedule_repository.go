package repository

import (
	"context"
	"database/sql"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/model"
)

// ScheduleRepo manages persistence for duty schedules.  Dates and
// shift times are stored as DATE/TIME columns and exposed to the rest
// of the application as the strings "2006-01-02" and "15:04".
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

const scheduleCols = `id, DATE_FORMAT(date, '%Y-%m-%d'), TIME_FORMAT(shift_start, '%H:%i'),
       TIME_FORMAT(shift_end, '%H:%i'), location, description, max_students, status,
       created_by, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }, s *model.Schedule) error {
	return row.Scan(&s.ID, &s.Date, &s.ShiftStart, &s.ShiftEnd, &s.Location,
		&s.Description, &s.MaxStudents, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new schedule and populates the generated ID and
// DB-default fields (status, timestamps) on the given struct.  New
// schedules always start in pending status.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	const q = `INSERT INTO schedules (date, shift_start, shift_end, location, description, max_students, created_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Date, s.ShiftStart, s.ShiftEnd, s.Location,
		s.Description, s.MaxStudents, s.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate status and timestamps.
	return scanSchedule(r.db.QueryRowContext(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE id = ?`, s.ID), s)
}

// GetByID retrieves a schedule by its ID.  It returns
// booking.ErrScheduleNotFound when no matching row exists.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	var s model.Schedule
	err := scanSchedule(r.db.QueryRowContext(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE id = ?`, id), &s)
	if err == sql.ErrNoRows {
		return nil, booking.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDTx loads a schedule inside a transaction with a row lock.
// Booking and cascade paths use this so that the capacity count and
// status checks that follow cannot race with another writer on the
// same schedule.
func (r *ScheduleRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Schedule, error) {
	var s model.Schedule
	err := scanSchedule(tx.QueryRowContext(ctx, `SELECT `+scheduleCols+` FROM schedules WHERE id = ? FOR UPDATE`, id), &s)
	if err == sql.ErrNoRows {
		return nil, booking.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStatusTx transitions a schedule's approval status within the
// caller's transaction.  The caller is responsible for validating the
// transition; this method only writes it.
func (r *ScheduleRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	res, err := tx.ExecContext(ctx, `UPDATE schedules SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrScheduleNotFound
	}
	return nil
}

// ScheduleOverview is a schedule together with its non-cancelled
// bookings, as shown on the shared calendar.  Cancelled bookings are
// filtered out in SQL so the active count displayed to students always
// matches what the capacity check will see.
type ScheduleOverview struct {
	model.Schedule
	ActiveBookings []OverviewBooking `json:"active_bookings"`
}

// OverviewBooking is the slice of a booking exposed on the calendar.
type OverviewBooking struct {
	BookingID uint64 `json:"booking_id"`
	StudentID uint64 `json:"student_id"`
	FullName  string `json:"full_name"`
	Status    string `json:"status"`
}

// List returns all schedules ordered by date ascending, each with its
// active bookings attached.  The result feeds both the calendar view
// and the advisory fast-path snapshot.
func (r *ScheduleRepo) List(ctx context.Context) ([]ScheduleOverview, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+scheduleCols+` FROM schedules ORDER BY date ASC, shift_start ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overviews := make([]ScheduleOverview, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var o ScheduleOverview
		if err := scanSchedule(rows, &o.Schedule); err != nil {
			return nil, err
		}
		o.ActiveBookings = []OverviewBooking{}
		index[o.ID] = len(overviews)
		overviews = append(overviews, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(overviews) == 0 {
		return overviews, nil
	}

	// Attach active bookings for all schedules in one query.
	const bq = `SELECT ss.schedule_id, ss.id, ss.student_id, u.full_name, ss.status
	            FROM schedule_students ss
	            JOIN users u ON u.id = ss.student_id
	            WHERE ss.status != 'cancelled'
	            ORDER BY ss.booking_time ASC`
	brows, err := r.db.QueryContext(ctx, bq)
	if err != nil {
		return nil, err
	}
	defer brows.Close()
	for brows.Next() {
		var schedID uint64
		var b OverviewBooking
		if err := brows.Scan(&schedID, &b.BookingID, &b.StudentID, &b.FullName, &b.Status); err != nil {
			return nil, err
		}
		if i, ok := index[schedID]; ok {
			overviews[i].ActiveBookings = append(overviews[i].ActiveBookings, b)
		}
	}
	if err := brows.Err(); err != nil {
		return nil, err
	}
	return overviews, nil
}
