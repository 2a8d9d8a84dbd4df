// Package booking implements the duty-booking rules: the capacity
// ledger that decides whether a schedule can admit another student,
// the booking lifecycle transitions, the same-day rebooking guard and
// the cancellation window rule.  The package is pure: it operates on
// snapshots loaded by the repository layer and never touches the
// store itself, so every rule is testable without a database.
package booking

import "errors"

// Business-rule rejections.  These are expected outcomes, reported to
// the caller with a human-readable explanation; they are distinct from
// transport or store failures.  Handlers translate them into 4xx
// responses, never 500s.
var (
	// ErrScheduleNotFound is returned when the requested schedule
	// does not exist in the store.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrBookingNotFound is returned when the requested booking does
	// not exist in the store.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrScheduleCancelled is returned when a booking is attempted on
	// a schedule that has been rejected by an admin.
	ErrScheduleCancelled = errors.New("schedule has been cancelled")

	// ErrScheduleFull is returned when the count of non-cancelled
	// bookings has reached the schedule's max_students.
	ErrScheduleFull = errors.New("schedule is full")

	// ErrAlreadyBooked is returned when the student already holds a
	// non-cancelled booking for the schedule, including the case
	// where a concurrent request won the insert race and the store
	// reported a uniqueness violation.
	ErrAlreadyBooked = errors.New("already booked")

	// ErrRebookingBlocked is returned when the student cancelled a
	// booking for the same duty date earlier on the current calendar
	// day and must wait until tomorrow to book that date again.
	ErrRebookingBlocked = errors.New("rebooking blocked until tomorrow")

	// ErrCancellationWindowClosed is returned when a student attempts
	// to cancel on the calendar day of the duty itself.
	ErrCancellationWindowClosed = errors.New("cannot cancel on the day of the duty")

	// ErrBookingClosed is returned when a transition is attempted on
	// a booking already in a terminal state (cancelled or completed).
	ErrBookingClosed = errors.New("booking already cancelled or completed")
)
