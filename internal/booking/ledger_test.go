package booking

import (
	"testing"

	"github.com/amielle/duty-roster/internal/model"
)

func newTestSlot(max int) *Slot {
	s := &model.Schedule{ID: 1, Date: "2026-03-10", MaxStudents: max}
	return NewSlot(s, nil)
}

func TestSlot_CapacityScenario(t *testing.T) {
	// Schedule with max_students=2, zero bookings.
	slot := newTestSlot(2)

	// A books, B books, C is refused.
	if err := slot.Admit(101); err != nil {
		t.Fatalf("A: unexpected error: %v", err)
	}
	if got := slot.ActiveCount(); got != 1 {
		t.Fatalf("expected active=1, got %d", got)
	}
	if err := slot.Admit(102); err != nil {
		t.Fatalf("B: unexpected error: %v", err)
	}
	if got := slot.ActiveCount(); got != 2 {
		t.Fatalf("expected active=2, got %d", got)
	}
	if err := slot.Admit(103); err != ErrScheduleFull {
		t.Fatalf("C: expected ErrScheduleFull, got %v", err)
	}

	// A cancels, freeing the slot permanently; C now fits.
	slot.Release(101)
	if got := slot.ActiveCount(); got != 1 {
		t.Fatalf("after release expected active=1, got %d", got)
	}
	if err := slot.Admit(103); err != nil {
		t.Fatalf("C retry: unexpected error: %v", err)
	}
	if got := slot.ActiveCount(); got != 2 {
		t.Fatalf("expected active=2, got %d", got)
	}
}

func TestSlot_InvariantHoldsUnderAnySequence(t *testing.T) {
	slot := newTestSlot(3)
	students := []uint64{1, 2, 3, 4, 5}

	// Interleave admissions and releases; the active count must never
	// exceed capacity at any point.
	for round := 0; round < 4; round++ {
		for _, id := range students {
			_ = slot.Admit(id)
			if slot.ActiveCount() > slot.MaxStudents {
				t.Fatalf("capacity invariant violated: %d > %d", slot.ActiveCount(), slot.MaxStudents)
			}
		}
		slot.Release(students[round%len(students)])
		if slot.ActiveCount() > slot.MaxStudents {
			t.Fatalf("capacity invariant violated after release")
		}
	}
}

func TestSlot_DuplicateAdmitRejected(t *testing.T) {
	slot := newTestSlot(2)
	if err := slot.Admit(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Rapid second attempt by the same student resolves to exactly one
	// active booking and reports ErrAlreadyBooked.
	if err := slot.Admit(7); err != ErrAlreadyBooked {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	if got := slot.ActiveCount(); got != 1 {
		t.Fatalf("expected one active booking, got %d", got)
	}
}

func TestNewSlot_ExcludesCancelled(t *testing.T) {
	s := &model.Schedule{ID: 9, MaxStudents: 2}
	bookings := []model.Booking{
		{StudentID: 1, Status: model.BookingStatusBooked},
		{StudentID: 2, Status: model.BookingStatusCancelled},
		{StudentID: 3, Status: model.BookingStatusCompleted},
	}
	slot := NewSlot(s, bookings)
	if got := slot.ActiveCount(); got != 2 {
		t.Fatalf("expected cancelled bookings excluded, active=%d", got)
	}
	if slot.HasStudent(2) {
		t.Fatalf("cancelled student must not count as active")
	}
	// Completed bookings still occupy capacity and still block a
	// duplicate claim.
	if err := slot.Admit(3); err != ErrAlreadyBooked {
		t.Fatalf("expected ErrAlreadyBooked for completed booking, got %v", err)
	}
}
