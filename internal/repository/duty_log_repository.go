package repository

import (
	"context"
	"database/sql"

	"github.com/amielle/duty-roster/internal/model"
)

// Audit actions recorded in duty_logs.
const (
	ActionBooked           = "booked"
	ActionCancelled        = "cancelled"
	ActionCompleted        = "completed"
	ActionScheduleCreated  = "schedule_created"
	ActionScheduleApproved = "schedule_approved"
	ActionScheduleRejected = "schedule_rejected"
)

// DutyLogRepo writes the append-only audit trail.  Every booking,
// cancellation and schedule decision produces one row; rows are never
// updated or deleted.
type DutyLogRepo struct {
	db *sql.DB
}

// NewDutyLogRepo returns a DutyLogRepo bound to the database.
func NewDutyLogRepo(db *sql.DB) *DutyLogRepo { return &DutyLogRepo{db: db} }

// InsertTx appends an audit entry within the caller's transaction so
// the trail commits atomically with the action it records.
func (r *DutyLogRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.DutyLog) error {
	const q = `INSERT INTO duty_logs (booking_id, schedule_id, action, performed_by, target_user, notes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, e.BookingID, e.ScheduleID, e.Action, e.PerformedBy, e.TargetUser, e.Notes)
	return err
}

// Insert appends an audit entry outside any transaction, used where
// the recorded action is itself a single statement.
func (r *DutyLogRepo) Insert(ctx context.Context, e *model.DutyLog) error {
	const q = `INSERT INTO duty_logs (booking_id, schedule_id, action, performed_by, target_user, notes)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, e.BookingID, e.ScheduleID, e.Action, e.PerformedBy, e.TargetUser, e.Notes)
	return err
}

// LogEntry is an audit row joined with the display name of the actor.
type LogEntry struct {
	model.DutyLog
	PerformedByName string `json:"performed_by_name"`
}

// ListRecent returns the newest audit entries up to limit.
func (r *DutyLogRepo) ListRecent(ctx context.Context, limit int) ([]LogEntry, error) {
	const q = `SELECT dl.id, dl.booking_id, dl.schedule_id, dl.action, dl.performed_by,
	                  dl.target_user, dl.notes, dl.created_at, u.full_name
	           FROM duty_logs dl
	           JOIN users u ON u.id = dl.performed_by
	           ORDER BY dl.created_at DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]LogEntry, 0)
	for rows.Next() {
		var e LogEntry
		var bookingID, scheduleID, targetUser sql.NullInt64
		if err := rows.Scan(&e.ID, &bookingID, &scheduleID, &e.Action, &e.PerformedBy,
			&targetUser, &e.Notes, &e.CreatedAt, &e.PerformedByName); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			v := uint64(bookingID.Int64)
			e.BookingID = &v
		}
		if scheduleID.Valid {
			v := uint64(scheduleID.Int64)
			e.ScheduleID = &v
		}
		if targetUser.Valid {
			v := uint64(targetUser.Int64)
			e.TargetUser = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
