package model

import "time"

// Schedule approval status values stored in schedules.status.  A
// schedule starts pending, an admin moves it to approved, and a
// rejection moves it to cancelled together with every booking on it.
const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusApproved  = "approved"
	ScheduleStatusCancelled = "cancelled"
)

// Schedule represents one duty slot on the shared calendar as stored
// in the `schedules` table.  The date and shift times are exposed as
// the strings "2006-01-02" and "15:04" so handlers and rules never
// deal with timezone-carrying DATE values.
//
// Fields:
//
//	ID          – primary key identifier of the schedule.
//	Date        – duty date, "2006-01-02".
//	ShiftStart  – shift start time, "15:04".
//	ShiftEnd    – shift end time, "15:04".
//	Location    – ward or clinic where the duty takes place.
//	Description – free-text notes shown on the calendar.
//	MaxStudents – capacity of the slot; active bookings never exceed it.
//	Status      – pending, approved or cancelled.
//	CreatedBy   – admin user that created the schedule.
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Schedule struct {
	ID          uint64    `json:"id"`
	Date        string    `json:"date"`
	ShiftStart  string    `json:"shift_start"`
	ShiftEnd    string    `json:"shift_end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	MaxStudents int       `json:"max_students"`
	Status      string    `json:"status"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
