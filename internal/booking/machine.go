package booking

import (
	"time"

	"github.com/amielle/duty-roster/internal/model"
)

// RejectionReason is recorded on every booking cancelled by the
// schedule-rejection cascade.
const RejectionReason = "Schedule rejected by admin"

// Cancel transitions a booking from booked to cancelled, stamping the
// cancellation time and reason.  The cancellation window rule applies:
// a duty may not be cancelled on its own calendar day.  Cancelled and
// completed are terminal; attempting to leave them returns
// ErrBookingClosed.
func Cancel(b *model.Booking, dutyDate, reason string, now time.Time) error {
	if b.Status != model.BookingStatusBooked {
		return ErrBookingClosed
	}
	if !CanCancel(dutyDate, now) {
		return ErrCancellationWindowClosed
	}
	t := now.UTC()
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &t
	b.CancellationReason = &reason
	return nil
}

// ForceCancel applies the rejection cascade transition to a booking.
// Unlike Cancel it ignores the cancellation window; an admin
// rejecting a schedule cancels every booking under it regardless of
// date.  Terminal bookings are left untouched and reported as closed
// so the caller can skip them.
func ForceCancel(b *model.Booking, reason string, now time.Time) error {
	if b.Status != model.BookingStatusBooked {
		return ErrBookingClosed
	}
	t := now.UTC()
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &t
	b.CancellationReason = &reason
	return nil
}

// Complete transitions a booking from booked to completed, stamping
// the completion time.  Completion enables certificate issuance.
func Complete(b *model.Booking, now time.Time) error {
	if b.Status != model.BookingStatusBooked {
		return ErrBookingClosed
	}
	t := now.UTC()
	b.Status = model.BookingStatusCompleted
	b.CompletedAt = &t
	return nil
}
