// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// NotificationQueueName is the durable queue carrying user alerts from
// request handlers to the consumer that writes notification rows.
const NotificationQueueName = "duty.notifications"

// Notification types carried in the event.
const (
	TypeBooking      = "booking"
	TypeApproval     = "approval"
	TypeRejection    = "rejection"
	TypeCancellation = "cancellation"
)

// NotificationEvent is published whenever an action should alert a
// user: a booking awaiting approval, a schedule approved or rejected,
// a duty cancelled.  It contains everything the consumer needs to
// write the notification row without querying back into the request's
// state.
type NotificationEvent struct {
	UserID    uint64 `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}
