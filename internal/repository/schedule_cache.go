package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slotSnapshot is the cached advisory view of one schedule: its
// capacity and the students currently holding active bookings.  It is
// only ever used to reject obviously doomed booking requests early;
// the durable store inside the booking transaction remains the sole
// arbiter of correctness.
type slotSnapshot struct {
	MaxStudents int      `json:"max_students"`
	Active      []uint64 `json:"active"`
}

// ScheduleCache keeps short-lived slot snapshots in redis.  Every
// method degrades gracefully when redis is unavailable: a nil client
// or a failed round trip behaves like a cache miss, never an error.
type ScheduleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewScheduleCache returns a cache over the given client.  rdb may be
// nil, in which case every lookup misses.
func NewScheduleCache(rdb *redis.Client, ttl time.Duration) *ScheduleCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ScheduleCache{rdb: rdb, ttl: ttl}
}

func slotKey(scheduleID uint64) string { return fmt.Sprintf("slot:%d", scheduleID) }

// Snapshot returns the cached view of a schedule, or ok=false on miss.
func (c *ScheduleCache) Snapshot(ctx context.Context, scheduleID uint64) (maxStudents int, active []uint64, ok bool) {
	if c.rdb == nil {
		return 0, nil, false
	}
	raw, err := c.rdb.Get(ctx, slotKey(scheduleID)).Bytes()
	if err != nil {
		return 0, nil, false
	}
	var snap slotSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return 0, nil, false
	}
	return snap.MaxStudents, snap.Active, true
}

// Store replaces the cached view of a schedule after a successful read
// of authoritative state.
func (c *ScheduleCache) Store(ctx context.Context, scheduleID uint64, maxStudents int, active []uint64) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(slotSnapshot{MaxStudents: maxStudents, Active: active})
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, slotKey(scheduleID), raw, c.ttl).Err()
}

// Invalidate drops the cached view after any mutation, or after the
// store rejected a write the snapshot failed to predict.  The next
// reader repopulates from MySQL.
func (c *ScheduleCache) Invalidate(ctx context.Context, scheduleID uint64) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, slotKey(scheduleID)).Err()
}
