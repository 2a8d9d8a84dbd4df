package booking

import (
	"testing"
	"time"
)

func TestRebookGuard_SameDayRoundTrip(t *testing.T) {
	g := NewRebookGuard()
	dayT := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	// Cancel duty D on day T: re-booking D is blocked for the rest of T.
	g.Arm(42, "2026-03-12", dayT)
	if !g.Blocked(42, "2026-03-12", dayT) {
		t.Fatalf("re-booking on the cancellation day must be blocked")
	}
	// Later the same day, still blocked.
	if !g.Blocked(42, "2026-03-12", dayT.Add(13*time.Hour)) {
		t.Fatalf("block must last the whole calendar day")
	}
	// On day T+1 the restriction lapses.
	if g.Blocked(42, "2026-03-12", dayT.AddDate(0, 0, 1)) {
		t.Fatalf("block must expire at the next calendar day")
	}
}

func TestRebookGuard_KeyedByDateNotSchedule(t *testing.T) {
	// The guard knows nothing about schedule IDs: after a schedule for
	// date D is cancelled and recreated, the mark still applies.
	g := NewRebookGuard()
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	g.Arm(42, "2026-03-12", now)
	if !g.Blocked(42, "2026-03-12", now) {
		t.Fatalf("mark must apply by duty date")
	}
	// A different date or a different student is unaffected.
	if g.Blocked(42, "2026-03-13", now) {
		t.Fatalf("other duty dates must not be blocked")
	}
	if g.Blocked(43, "2026-03-12", now) {
		t.Fatalf("other students must not be blocked")
	}
}

func TestRebookGuard_Sweep(t *testing.T) {
	g := NewRebookGuard()
	day1 := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	g.Arm(1, "2026-03-20", day1)
	g.Arm(2, "2026-03-21", day2)

	g.Sweep(day2)
	if len(g.marks) != 1 {
		t.Fatalf("sweep must drop marks from previous days, kept %d", len(g.marks))
	}
	if !g.Blocked(2, "2026-03-21", day2) {
		t.Fatalf("today's mark must survive the sweep")
	}
}
