// Package connection implements webhook connections: per-room, per-hook
// bindings between an inbound webhook endpoint and a chat room, including
// their configuration lifecycle and the payload-to-message pipeline.
package connection

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xraph/hookbridge/format"
	"github.com/xraph/hookbridge/sanitize"
	"github.com/xraph/hookbridge/schema"
	"github.com/xraph/hookbridge/transform"
)

// fallbackMessage is posted to the room when a transformation function fails
// at runtime. The raw error never reaches the room.
const fallbackMessage = "Webhook received but failed to process via transformation function"

// Config carries the bridge-wide policy a connection operates under.
type Config struct {
	// AllowJSTransformationFunctions enables user-supplied transformation
	// scripts. When false, configurations carrying one are rejected.
	AllowJSTransformationFunctions bool

	// UserIDPrefix, when set, makes connections send as synthetic per-hook
	// users "@<prefix><localpart>:<domain>" instead of the bridge bot.
	UserIDPrefix string

	// PublicURL is the externally reachable base under which hook URLs are
	// minted, e.g. "https://bridge.example.com/webhook".
	PublicURL string

	// ScriptTimeout bounds transformation function execution. Zero means
	// transform.DefaultTimeout.
	ScriptTimeout time.Duration
}

// Connection binds one inbound webhook endpoint to one room. A Connection is
// not safe for concurrent use; callers serialize webhook delivery and state
// updates per connection.
type Connection struct {
	roomID   string
	hookID   string
	stateKey string

	state       *State
	transformer *transform.Transformer
	schemas     *schema.Validator

	// lastDisplayname caches the sender profile we last converged to, so
	// the profile round-trip is skipped on the hot path.
	lastDisplayname string

	store     Store
	messenger Messenger
	dir       Directory
	cfg       Config
	logger    *slog.Logger
}

// newConnection wires a connection and applies its initial state.
func newConnection(ctx context.Context, deps Deps, roomID, hookID, stateKey string, st *State) *Connection {
	c := &Connection{
		roomID:    roomID,
		hookID:    hookID,
		stateKey:  stateKey,
		schemas:   schema.NewValidator(),
		store:     deps.Store,
		messenger: deps.Messenger,
		dir:       deps.Directory,
		cfg:       deps.Config,
		logger:    deps.Logger,
	}
	c.applyState(ctx, st)
	return c
}

// applyState installs validated configuration, compiling the transformation
// function if one is set. A compile failure is reported to the room and
// leaves the connection on the heuristic formatter path.
func (c *Connection) applyState(ctx context.Context, st *State) {
	c.state = st
	c.transformer = nil

	if st.TransformationFunction == "" || !c.cfg.AllowJSTransformationFunctions {
		return
	}

	timeout := c.cfg.ScriptTimeout
	if timeout == 0 {
		timeout = transform.DefaultTimeout
	}
	tr, err := transform.New(st.TransformationFunction, timeout)
	if err != nil {
		c.logger.Warn("transformation function failed to compile",
			"room_id", c.roomID, "state_key", c.stateKey, "error", err)
		if sendErr := c.messenger.SendRoomText(ctx, c.roomID,
			"Could not compile transformation function: "+err.Error()); sendErr != nil {
			c.logger.Warn("failed to report compile error to room",
				"room_id", c.roomID, "error", sendErr)
		}
		return
	}
	c.transformer = tr
}

// OnGenericHook processes one inbound webhook payload and emits at most one
// room message. The boolean reports whether the payload was handled
// successfully; a transformation runtime failure posts a generic fallback
// notice and reports false. A returned error means message emission itself
// failed.
func (c *Connection) OnGenericHook(ctx context.Context, payload any) (bool, error) {
	if c.state.PayloadSchema != nil {
		if err := c.schemas.Validate(c.state.PayloadSchema, payload); err != nil {
			c.logger.Debug("webhook payload failed schema validation",
				"room_id", c.roomID, "state_key", c.stateKey, "error", err)
			return false, c.sendNotice(ctx, fallbackMessage)
		}
	}

	successful := true
	var msg format.Message
	msgType := MsgTypeNotice

	if c.transformer != nil {
		res, err := c.transformer.Execute(ctx, payload)
		switch {
		case err != nil:
			c.logger.Warn("transformation function failed",
				"room_id", c.roomID, "state_key", c.stateKey, "error", err)
			successful = false
			msg = format.Message{Plain: fallbackMessage}
		case res == nil:
			// Script deliberately produced no message.
			return true, nil
		default:
			msg = format.Message{Plain: res.Plain, HTML: res.HTML}
			if res.MsgType != "" {
				msgType = res.MsgType
			}
		}
	} else {
		msg = format.Format(payload)
	}

	sender := c.SenderUserID()
	if sender != c.dir.BotUserID() {
		c.ensureDisplayname(ctx, c.dir.Intent(sender))
	}

	formatted := msg.HTML
	if formatted == "" {
		formatted = format.Render(msg.Plain)
	}

	content := MessageContent{
		MsgType:     msgType,
		Body:        msg.Plain,
		WebhookData: sanitize.Value(payload),
	}
	if formatted != "" && formatted != msg.Plain {
		content.Format = FormatHTML
		content.FormattedBody = formatted
	}

	if err := c.messenger.SendRoomMessage(ctx, c.roomID, content, sender); err != nil {
		return false, err
	}
	return successful, nil
}

func (c *Connection) sendNotice(ctx context.Context, plain string) error {
	content := MessageContent{MsgType: MsgTypeNotice, Body: plain}
	return c.messenger.SendRoomMessage(ctx, c.roomID, content, c.dir.BotUserID())
}

// OnStateUpdate applies a state event content change pushed from the room.
// Invalid content is rejected without touching the current state.
func (c *Connection) OnStateUpdate(ctx context.Context, content map[string]any) error {
	st, err := ValidateState(content, c.cfg.AllowJSTransformationFunctions)
	if err != nil {
		return err
	}
	c.applyState(ctx, st)
	return nil
}

// UpdateConfig merges a partial configuration over the current state,
// validates the result, persists it under the canonical event type, and
// applies it.
func (c *Connection) UpdateConfig(ctx context.Context, patch map[string]any) error {
	merged := c.state.Content()
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	st, err := ValidateState(merged, c.cfg.AllowJSTransformationFunctions)
	if err != nil {
		return err
	}
	if err := c.store.SendStateEvent(ctx, c.roomID, EventTypeWebhook, c.stateKey, st.Content()); err != nil {
		return err
	}
	c.applyState(ctx, st)
	return nil
}

// OnRemove soft-removes the connection: the backing state event is replaced
// with disabled content under whichever event type it currently lives, and
// the hook ID mapping is dropped from room account data.
func (c *Connection) OnRemove(ctx context.Context) error {
	eventType := EventTypeWebhook
	_, err := c.store.GetStateEvent(ctx, c.roomID, eventType, c.stateKey)
	if errors.Is(err, ErrStateEventNotFound) {
		eventType = LegacyEventTypeWebhook
		if _, err = c.store.GetStateEvent(ctx, c.roomID, eventType, c.stateKey); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := c.store.SendStateEvent(ctx, c.roomID, eventType, c.stateKey,
		map[string]any{"disabled": true}); err != nil {
		return err
	}
	return EnsureRoomAccountData(ctx, c.store, c.roomID, c.hookID, c.stateKey, true)
}

// Details describes the connection for provisioning clients. Secrets (the
// hook URL and ID) are included only when showSecrets is set.
type Details struct {
	Service   string         `json:"service"`
	EventType string         `json:"eventType"`
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	Config    map[string]any `json:"config"`
	Secrets   *Secrets       `json:"secrets,omitempty"`
}

// Secrets is the capability portion of connection details.
type Secrets struct {
	URL    string `json:"url"`
	HookID string `json:"hookId"`
}

// Details returns the provisioning view of the connection.
func (c *Connection) Details(showSecrets bool) Details {
	d := Details{
		Service:   "generic",
		EventType: EventTypeWebhook,
		Type:      "webhook",
		ID:        c.stateKey,
		Config:    c.state.Content(),
	}
	if showSecrets {
		d.Secrets = &Secrets{
			URL:    c.cfg.PublicURL + "/webhook/" + c.hookID,
			HookID: c.hookID,
		}
	}
	return d
}

// ServiceInfo identifies the connection service itself, independent of any
// particular connection.
type ServiceInfo struct {
	Service   string `json:"service"`
	EventType string `json:"eventType"`
	Type      string `json:"type"`
	BotUserID string `json:"botUserId"`
}

// ProvisionerInfo describes the webhook connection service for provisioning
// clients discovering what the bridge offers.
func ProvisionerInfo(botUserID string) ServiceInfo {
	return ServiceInfo{
		Service:   "generic",
		EventType: EventTypeWebhook,
		Type:      "webhook",
		BotUserID: botUserID,
	}
}

// IsInterested reports whether the connection handles the given state event.
func (c *Connection) IsInterested(eventType, stateKey string) bool {
	if stateKey != c.stateKey {
		return false
	}
	return eventType == EventTypeWebhook || eventType == LegacyEventTypeWebhook
}

// Priority orders this connection among others in the same room. Lower runs
// first.
func (c *Connection) Priority() int {
	if c.state.Priority != 0 {
		return c.state.Priority
	}
	return DefaultPriority
}

// RoomID returns the room this connection posts into.
func (c *Connection) RoomID() string { return c.roomID }

// HookID returns the secret inbound identifier.
func (c *Connection) HookID() string { return c.hookID }

// StateKey returns the backing state event's state key.
func (c *Connection) StateKey() string { return c.stateKey }

// Name returns the connection's configured name.
func (c *Connection) Name() string { return c.state.Name }

// State returns the current validated configuration.
func (c *Connection) State() *State { return c.state }
