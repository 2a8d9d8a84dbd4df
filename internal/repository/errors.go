// Package repository implements data access against MySQL.  Domain
// rejections (schedule full, already booked, rebooking blocked) are
// the sentinel errors defined in the booking package; this file holds
// the access-control sentinels shared across repositories so handlers
// can translate failures into HTTP responses.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as cancelling another student's
// booking. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state, such as approving a schedule that is already
// cancelled. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062). The unique key over (schedule_id,
// active_student) makes this the authoritative signal that a
// concurrent request won a booking race.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
