package booking

import "github.com/amielle/duty-roster/internal/model"

// Slot is a capacity-ledger snapshot of one schedule: its capacity and
// the students currently holding non-cancelled bookings.  A Slot is
// built either from the redis-cached schedule list (advisory fast
// path) or from rows read inside a transaction (authoritative path).
// Cancelled bookings are excluded at construction time and therefore
// never count against capacity.
type Slot struct {
	ScheduleID  uint64
	MaxStudents int
	Active      []uint64 // student IDs of non-cancelled bookings
}

// NewSlot builds a ledger snapshot from a schedule and its bookings,
// dropping cancelled rows.
func NewSlot(s *model.Schedule, bookings []model.Booking) *Slot {
	slot := &Slot{ScheduleID: s.ID, MaxStudents: s.MaxStudents}
	for _, b := range bookings {
		if b.Status != model.BookingStatusCancelled {
			slot.Active = append(slot.Active, b.StudentID)
		}
	}
	return slot
}

// ActiveCount returns the number of bookings counting against capacity.
func (s *Slot) ActiveCount() int { return len(s.Active) }

// HasStudent reports whether the student already holds an active
// booking in this slot.
func (s *Slot) HasStudent(studentID uint64) bool {
	for _, id := range s.Active {
		if id == studentID {
			return true
		}
	}
	return false
}

// Admit decides whether the slot can accept a new booking from the
// given student.  Checks run in order: capacity first, then the
// duplicate check.  On success the student is recorded in the
// snapshot so a subsequent Admit for the same student is rejected.
func (s *Slot) Admit(studentID uint64) error {
	if s.ActiveCount() >= s.MaxStudents {
		return ErrScheduleFull
	}
	if s.HasStudent(studentID) {
		return ErrAlreadyBooked
	}
	s.Active = append(s.Active, studentID)
	return nil
}

// Release removes one active claim by the student, freeing a capacity
// slot.  Releasing a student with no active claim is a no-op.
func (s *Slot) Release(studentID uint64) {
	for i, id := range s.Active {
		if id == studentID {
			s.Active = append(s.Active[:i], s.Active[i+1:]...)
			return
		}
	}
}
