package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amielle/duty-roster/internal/booking"
)

// CancellationRepo persists same-day cancellation marks.  The table is
// the durable side of the rebooking guard: unlike an in-memory set it
// survives process restarts and applies across sessions, so a student
// cannot dodge the rule by reloading.  Rows become inert at midnight
// because lookups always include the current calendar day; no eager
// cleanup is required.
type CancellationRepo struct {
	db *sql.DB
}

// NewCancellationRepo returns a CancellationRepo bound to the database.
func NewCancellationRepo(db *sql.DB) *CancellationRepo { return &CancellationRepo{db: db} }

// MarkTx records that the student cancelled a booking for dutyDate at
// instant now, within the caller's transaction so the mark commits
// together with the cancellation itself.  A duplicate mark (cancelling
// twice for the same date on the same day) is not an error.
func (r *CancellationRepo) MarkTx(ctx context.Context, tx *sql.Tx, studentID uint64, dutyDate string, now time.Time) error {
	const q = `INSERT INTO cancellation_marks (student_id, duty_date, marked_on) VALUES (?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, studentID, dutyDate, booking.Day(now))
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

// BlockedTx reports whether a mark exists for (student, dutyDate) on
// now's calendar day, read under the caller's transaction.  This is
// the authoritative check behind RebookGuard's in-memory fast path.
func (r *CancellationRepo) BlockedTx(ctx context.Context, tx *sql.Tx, studentID uint64, dutyDate string, now time.Time) (bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM cancellation_marks WHERE student_id = ? AND duty_date = ? AND marked_on = ? LIMIT 1`,
		studentID, dutyDate, booking.Day(now)).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeBefore deletes marks older than the given calendar day.  The
// consumer loop runs this periodically as housekeeping.
func (r *CancellationRepo) PurgeBefore(ctx context.Context, day string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cancellation_marks WHERE marked_on < ?`, day)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
