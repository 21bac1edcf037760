package connection

import "context"

// MessageContent is the body of an emitted room message.
type MessageContent struct {
	// MsgType is the Matrix message type, e.g. "m.notice".
	MsgType string `json:"msgtype"`

	// Body is the plain-text body.
	Body string `json:"body"`

	// Format qualifies FormattedBody; "org.matrix.custom.html" when set.
	Format string `json:"format,omitempty"`

	// FormattedBody is the HTML rendering of the body.
	FormattedBody string `json:"formatted_body,omitempty"`

	// WebhookData is the sanitized raw payload, attached under the
	// io.xraph.hookbridge.webhook_data field.
	WebhookData any `json:"io.xraph.hookbridge.webhook_data,omitempty"`
}

// Messenger emits messages into rooms. Emission is fire-and-forget: a
// returned error propagates to the caller, and no retry is attempted.
type Messenger interface {
	// SendRoomMessage emits one message into roomID as the given sender.
	SendRoomMessage(ctx context.Context, roomID string, content MessageContent, sender string) error

	// SendRoomText emits a plain text notice as the bridge bot.
	SendRoomText(ctx context.Context, roomID, text string) error
}
