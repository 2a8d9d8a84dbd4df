package booking

import (
	"time"

	"github.com/amielle/duty-roster/internal/model"
)

// DateLayout is the wire and storage format for duty dates.  All date
// comparisons in this package truncate to calendar-day granularity; no
// timezone arithmetic is performed beyond that.
const DateLayout = "2006-01-02"

// Day formats a timestamp as its calendar day.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// CanCancel reports whether a booking for dutyDate may be cancelled at
// instant now.  The rule is intentionally date-only: cancellation is
// refused exactly when dutyDate falls on the same calendar day as now,
// and allowed otherwise, past and future dates included.
func CanCancel(dutyDate string, now time.Time) bool {
	d, err := time.Parse(DateLayout, dutyDate)
	if err != nil {
		return false
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return !(y1 == y2 && m1 == m2 && d1 == d2)
}

// Bookable reports whether a schedule can still accept bookings.  Only
// a cancelled (rejected) schedule is closed; pending and approved
// schedules both admit students, approval affecting the derived
// booking state rather than bookability.  The check must be applied to
// the schedule row read under the booking transaction's lock, not only
// to an earlier unlocked read: a rejection committing in between
// would otherwise slip a fresh booking into a cancelled schedule.
func Bookable(scheduleStatus string) error {
	if scheduleStatus == model.ScheduleStatusCancelled {
		return ErrScheduleCancelled
	}
	return nil
}

// DerivedState is the read-time view of a booking combined with its
// parent schedule.  The booking row only distinguishes
// booked/cancelled/completed; whether a booked duty is confirmed is
// read from the schedule's approval status.
const (
	StatePendingApproval = "pending_approval"
	StateConfirmed       = "confirmed"
	StateCancelled       = "cancelled"
	StateCompleted       = "completed"
)

// DerivedState computes the presentation state for a booking given the
// parent schedule's status.  booked + approved means confirmed; booked
// on a pending (or cancelled) schedule means still awaiting approval.
func DerivedState(bookingStatus, scheduleStatus string) string {
	switch bookingStatus {
	case model.BookingStatusCancelled:
		return StateCancelled
	case model.BookingStatusCompleted:
		return StateCompleted
	}
	if scheduleStatus == model.ScheduleStatusApproved {
		return StateConfirmed
	}
	return StatePendingApproval
}
