package booking

import (
	"sync"
	"time"
)

// markKey identifies one same-day cancellation record: who cancelled,
// for which duty date, on which calendar day.
type markKey struct {
	studentID uint64
	dutyDate  string
	markedOn  string
}

// RebookGuard is the in-process mirror of the cancellation_marks
// table.  After a student cancels a booking for duty date D, the guard
// blocks any new booking by that student for D until the calendar day
// of the cancellation has elapsed.  The guard keys on the duty date,
// not the schedule ID, so the restriction survives a schedule being
// cancelled and recreated for the same date.
//
// The guard is advisory: the durable cancellation_marks row read
// inside the booking transaction is the authoritative check.  The
// in-memory set only saves a round trip on the common path.
type RebookGuard struct {
	mu    sync.Mutex
	marks map[markKey]struct{}
}

// NewRebookGuard returns an empty guard.
func NewRebookGuard() *RebookGuard {
	return &RebookGuard{marks: make(map[markKey]struct{})}
}

// Arm records that the student cancelled a booking for dutyDate at
// instant now.  The mark applies for the remainder of now's calendar
// day only.
func (g *RebookGuard) Arm(studentID uint64, dutyDate string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.marks[markKey{studentID, dutyDate, Day(now)}] = struct{}{}
}

// Blocked reports whether the student is barred from booking dutyDate
// at instant now.  A mark armed on a previous calendar day never
// blocks: the lookup key includes the current day, so stale marks
// simply stop matching at midnight.
func (g *RebookGuard) Blocked(studentID uint64, dutyDate string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.marks[markKey{studentID, dutyDate, Day(now)}]
	return ok
}

// Sweep drops marks whose calendar day is older than now's day.  The
// booking handlers call this opportunistically; correctness does not
// depend on it since lookups are keyed by the current day.
func (g *RebookGuard) Sweep(now time.Time) {
	today := Day(now)
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.marks {
		if k.markedOn < today {
			delete(g.marks, k)
		}
	}
}
