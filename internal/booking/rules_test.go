package booking

import (
	"testing"
	"time"

	"github.com/amielle/duty-roster/internal/model"
)

func TestCanCancel_DayRule(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	if CanCancel("2026-03-10", now) {
		t.Fatalf("cancelling on the duty day itself must be refused")
	}
	if !CanCancel("2026-03-09", now) {
		t.Fatalf("cancelling a past duty must be allowed")
	}
	if !CanCancel("2026-03-11", now) {
		t.Fatalf("cancelling a future duty must be allowed")
	}
}

func TestCanCancel_TimeOfDayIgnored(t *testing.T) {
	// 23:59 on the duty day is still the duty day.
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	if CanCancel("2026-03-10", now) {
		t.Fatalf("comparison must be date-only")
	}
	// One minute past midnight the window re-opens.
	now = now.Add(2 * time.Minute)
	if !CanCancel("2026-03-10", now) {
		t.Fatalf("day after the duty date must be cancellable")
	}
}

func TestCanCancel_BadDate(t *testing.T) {
	if CanCancel("not-a-date", time.Now()) {
		t.Fatalf("unparseable dates must not be cancellable")
	}
}

func TestDerivedState(t *testing.T) {
	cases := []struct {
		booking  string
		schedule string
		want     string
	}{
		{model.BookingStatusBooked, model.ScheduleStatusPending, StatePendingApproval},
		{model.BookingStatusBooked, model.ScheduleStatusApproved, StateConfirmed},
		{model.BookingStatusCancelled, model.ScheduleStatusApproved, StateCancelled},
		{model.BookingStatusCompleted, model.ScheduleStatusPending, StateCompleted},
		{model.BookingStatusBooked, model.ScheduleStatusCancelled, StatePendingApproval},
	}
	for _, tc := range cases {
		if got := DerivedState(tc.booking, tc.schedule); got != tc.want {
			t.Fatalf("DerivedState(%s, %s) = %s, want %s", tc.booking, tc.schedule, got, tc.want)
		}
	}
}

func TestBookable(t *testing.T) {
	if err := Bookable(model.ScheduleStatusPending); err != nil {
		t.Fatalf("pending schedules must accept bookings: %v", err)
	}
	if err := Bookable(model.ScheduleStatusApproved); err != nil {
		t.Fatalf("approved schedules must accept bookings: %v", err)
	}
	if err := Bookable(model.ScheduleStatusCancelled); err != ErrScheduleCancelled {
		t.Fatalf("cancelled schedules must refuse bookings, got %v", err)
	}
}

func TestBookable_RecheckAfterRejection(t *testing.T) {
	// A booking request pre-checks the schedule, then an admin
	// rejection commits before the booking transaction takes its
	// lock.  The row re-read under the lock carries the cancelled
	// status and must refuse admission, even though the slot's
	// capacity ledger is now empty (the cascade cancelled every
	// claim).
	status := model.ScheduleStatusPending
	if err := Bookable(status); err != nil {
		t.Fatalf("pre-check on the pending schedule must pass: %v", err)
	}

	status = model.ScheduleStatusCancelled // rejection commits here
	slot := &Slot{ScheduleID: 7, MaxStudents: 2}

	if err := Bookable(status); err != ErrScheduleCancelled {
		t.Fatalf("locked re-read must refuse the cancelled schedule, got %v", err)
	}
	if slot.ActiveCount() != 0 {
		t.Fatalf("capacity alone must not be what blocks the booking")
	}
}
