package booking

import (
	"testing"
	"time"

	"github.com/amielle/duty-roster/internal/model"
)

func TestCancel_SetsTimestampAndReason(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	b := &model.Booking{Status: model.BookingStatusBooked}

	if err := Cancel(b, "2026-03-12", "family emergency", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != model.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
	if b.CancelledAt == nil || !b.CancelledAt.Equal(now) {
		t.Fatalf("cancellation timestamp not set")
	}
	if b.CancellationReason == nil || *b.CancellationReason != "family emergency" {
		t.Fatalf("cancellation reason not set")
	}
}

func TestCancel_RefusedOnDutyDay(t *testing.T) {
	now := time.Date(2026, 3, 12, 7, 0, 0, 0, time.UTC)
	b := &model.Booking{Status: model.BookingStatusBooked}
	if err := Cancel(b, "2026-03-12", "", now); err != ErrCancellationWindowClosed {
		t.Fatalf("expected ErrCancellationWindowClosed, got %v", err)
	}
	if b.Status != model.BookingStatusBooked {
		t.Fatalf("booking must be untouched after refused cancel")
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	now := time.Now().UTC()
	for _, status := range []string{model.BookingStatusCancelled, model.BookingStatusCompleted} {
		b := &model.Booking{Status: status}
		if err := Cancel(b, "2099-01-01", "", now); err != ErrBookingClosed {
			t.Fatalf("Cancel from %s: expected ErrBookingClosed, got %v", status, err)
		}
		if err := Complete(b, now); err != ErrBookingClosed {
			t.Fatalf("Complete from %s: expected ErrBookingClosed, got %v", status, err)
		}
		if err := ForceCancel(b, RejectionReason, now); err != ErrBookingClosed {
			t.Fatalf("ForceCancel from %s: expected ErrBookingClosed, got %v", status, err)
		}
	}
}

func TestComplete_SetsTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC)
	b := &model.Booking{Status: model.BookingStatusBooked}
	if err := Complete(b, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(now) {
		t.Fatalf("completion timestamp not set")
	}
}

func TestRejectionCascade_Completeness(t *testing.T) {
	// A schedule with N booked students plus one prior cancellation.
	now := time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC)
	bookings := []model.Booking{
		{ID: 1, StudentID: 10, Status: model.BookingStatusBooked},
		{ID: 2, StudentID: 11, Status: model.BookingStatusBooked},
		{ID: 3, StudentID: 12, Status: model.BookingStatusCancelled},
		{ID: 4, StudentID: 13, Status: model.BookingStatusBooked},
	}

	cancelled := 0
	for i := range bookings {
		if err := ForceCancel(&bookings[i], RejectionReason, now); err == nil {
			cancelled++
		}
	}
	if cancelled != 3 {
		t.Fatalf("expected exactly 3 cascade cancellations, got %d", cancelled)
	}
	for _, b := range bookings {
		if b.Status != model.BookingStatusCancelled {
			t.Fatalf("booking %d not cancelled after cascade", b.ID)
		}
		if b.ID != 3 && (b.CancellationReason == nil || *b.CancellationReason != RejectionReason) {
			t.Fatalf("booking %d missing rejection reason", b.ID)
		}
	}
	// The cascade ignores the duty-day window: even a same-day duty is
	// cancelled when an admin rejects the schedule.
	sameDay := model.Booking{ID: 5, Status: model.BookingStatusBooked}
	if err := ForceCancel(&sameDay, RejectionReason, now); err != nil {
		t.Fatalf("cascade must ignore the cancellation window: %v", err)
	}
}
