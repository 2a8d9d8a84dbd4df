package model

import "time"

// Notification is a user-facing alert written by the queue consumer.
// Delivery is best effort: a failed notification write never fails the
// booking or approval that produced it.
type Notification struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DutyLog is one append-only audit trail entry.  Rows are only ever
// inserted, never updated or deleted.
type DutyLog struct {
	ID          uint64    `json:"id"`
	BookingID   *uint64   `json:"booking_id,omitempty"`
	ScheduleID  *uint64   `json:"schedule_id,omitempty"`
	Action      string    `json:"action"`
	PerformedBy uint64    `json:"performed_by"`
	TargetUser  *uint64   `json:"target_user,omitempty"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}
