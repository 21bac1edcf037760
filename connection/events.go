package connection

import "errors"

// State event types recognized by webhook connections. The canonical type is
// written on provisioning and config updates; the legacy type is still read
// so connections created by older bridge versions keep working, and removal
// checks both.
const (
	// EventTypeWebhook is the canonical state event type.
	EventTypeWebhook = "io.xraph.hookbridge.generic.hook"

	// LegacyEventTypeWebhook is the pre-rename state event type.
	LegacyEventTypeWebhook = "io.xraph.bridge.generic.hook"
)

// WebhookDataField is the message content field carrying the sanitized raw
// payload.
const WebhookDataField = "io.xraph.hookbridge.webhook_data"

// Matrix message constants used when emitting webhook messages.
const (
	MsgTypeNotice = "m.notice"
	FormatHTML    = "org.matrix.custom.html"
)

// ErrStateEventNotFound is returned by Store implementations when the
// requested state event does not exist.
var ErrStateEventNotFound = errors.New("hookbridge: state event not found")

// StateEvent is a room state event as seen by the bridge.
type StateEvent struct {
	// Type is the state event type.
	Type string `json:"type"`

	// StateKey is the replace-by-key identifier within the event type.
	StateKey string `json:"state_key"`

	// Content is the event body. Empty or disabled content marks a
	// removed connection.
	Content map[string]any `json:"content"`
}

// Disabled reports whether the event content marks the connection as
// removed.
func (ev StateEvent) Disabled() bool {
	if len(ev.Content) == 0 {
		return true
	}
	disabled, _ := ev.Content["disabled"].(bool)
	return disabled
}
