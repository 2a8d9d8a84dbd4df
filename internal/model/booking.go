package model

import "time"

// Booking status values stored in schedule_students.status.  booked is
// the only live state; cancelled and completed are terminal.
const (
	BookingStatusBooked    = "booked"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking represents a student's claim on one duty slot as stored in
// the `schedule_students` table.  Whether the duty is confirmed or
// still awaiting approval is not stored here; it is derived from the
// parent schedule's status.
type Booking struct {
	ID                 uint64     `json:"id"`
	ScheduleID         uint64     `json:"schedule_id"`
	StudentID          uint64     `json:"student_id"`
	Status             string     `json:"status"`
	BookingTime        time.Time  `json:"booking_time"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// CancellationMark is a row in the `cancellation_marks` table: student
// X cancelled a duty on date D during calendar day M.  Marks are the
// durable source of the same-day rebooking rule and are purged once
// the marked day has passed.
type CancellationMark struct {
	ID        uint64    `json:"id"`
	StudentID uint64    `json:"student_id"`
	DutyDate  string    `json:"duty_date"`
	MarkedOn  string    `json:"marked_on"`
	CreatedAt time.Time `json:"created_at"`
}
