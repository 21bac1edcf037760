package webhook

import (
	"time"

	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/internal/entity"
)

// Event records one inbound webhook processed by the bridge. The bounded
// recent-event log backs provisioner debugging; it is not a delivery queue.
type Event struct {
	entity.Entity

	// ID is the unique TypeID for this record.
	ID id.ID `json:"id"`

	// HookID identifies the webhook endpoint that received the payload.
	HookID string `json:"hook_id"`

	// RoomID is the room the connection lives in.
	RoomID string `json:"room_id"`

	// Payload is the decoded webhook body as received.
	Payload any `json:"payload"`

	// Success reports whether processing produced a regular message
	// (false means the fail-soft fallback path was taken).
	Success bool `json:"success"`

	// ReceivedAt is when the webhook arrived.
	ReceivedAt time.Time `json:"received_at"`
}
