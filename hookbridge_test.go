package hookbridge_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/registry"
	"github.com/xraph/hookbridge/signature"
	"github.com/xraph/hookbridge/store/memory"
)

func ctx() context.Context { return context.Background() }

type sentMessage struct {
	RoomID  string
	Content connection.MessageContent
	Sender  string
}

type fakeMessenger struct {
	messages []sentMessage
}

func (m *fakeMessenger) SendRoomMessage(_ context.Context, roomID string, content connection.MessageContent, sender string) error {
	m.messages = append(m.messages, sentMessage{RoomID: roomID, Content: content, Sender: sender})
	return nil
}

func (m *fakeMessenger) SendRoomText(_ context.Context, roomID, text string) error {
	m.messages = append(m.messages, sentMessage{
		RoomID:  roomID,
		Content: connection.MessageContent{MsgType: connection.MsgTypeNotice, Body: text},
	})
	return nil
}

type fakeIntent struct{ userID string }

func (i fakeIntent) UserID() string                             { return i.userID }
func (fakeIntent) EnsureRegistered(context.Context) error       { return nil }
func (fakeIntent) Displayname(context.Context) (string, error)  { return "", nil }
func (fakeIntent) SetDisplayname(context.Context, string) error { return nil }

type fakeDirectory struct{}

func (fakeDirectory) BotUserID() string { return "@hookbot:example.com" }
func (fakeDirectory) Domain() string    { return "example.com" }
func (fakeDirectory) Intent(userID string) connection.Intent {
	return fakeIntent{userID: userID}
}

func newBridge(t *testing.T, opts ...hookbridge.Option) (*hookbridge.Bridge, *memory.Store, *fakeMessenger) {
	t.Helper()
	st := memory.New()
	messenger := &fakeMessenger{}
	base := []hookbridge.Option{
		hookbridge.WithStore(st),
		hookbridge.WithMessenger(messenger),
		hookbridge.WithDirectory(fakeDirectory{}),
		hookbridge.WithLogger(slog.New(slog.DiscardHandler)),
	}
	b, err := hookbridge.New(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return b, st, messenger
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := hookbridge.New(); !errors.Is(err, hookbridge.ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}

	if _, err := hookbridge.New(hookbridge.WithStore(memory.New())); !errors.Is(err, hookbridge.ErrNoMessenger) {
		t.Fatalf("expected ErrNoMessenger, got %v", err)
	}

	_, err := hookbridge.New(
		hookbridge.WithStore(memory.New()),
		hookbridge.WithMessenger(&fakeMessenger{}),
	)
	if !errors.Is(err, hookbridge.ErrNoDirectory) {
		t.Fatalf("expected ErrNoDirectory, got %v", err)
	}
}

func TestHandleWebhookEndToEnd(t *testing.T) {
	b, st, messenger := newBridge(t)
	room := "!room:example.com"

	conn, err := b.Provision(ctx(), room, map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	ok, err := b.HandleWebhook(ctx(), conn.HookID(), map[string]any{"text": "deployed"})
	if err != nil || !ok {
		t.Fatalf("HandleWebhook() = %v, %v", ok, err)
	}

	if len(messenger.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messenger.messages))
	}
	if messenger.messages[0].Content.Body != "deployed" {
		t.Errorf("Body = %q", messenger.messages[0].Content.Body)
	}

	// The webhook landed in the recent-event log.
	log, err := st.ListRecentWebhooks(ctx(), conn.HookID(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || !log[0].Success {
		t.Fatalf("webhook log = %+v", log)
	}
}

func TestHandleWebhookUnknownHook(t *testing.T) {
	b, _, messenger := newBridge(t)

	_, err := b.HandleWebhook(ctx(), "no-such-hook", map[string]any{"text": "hi"})
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected registry.ErrNotFound, got %v", err)
	}
	if len(messenger.messages) != 0 {
		t.Fatal("message emitted for unknown hook")
	}
}

func TestHandleWebhookRateLimit(t *testing.T) {
	b, _, _ := newBridge(t, hookbridge.WithWebhookRateLimit(1))

	conn, err := b.Provision(ctx(), "!room:example.com", map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.HandleWebhook(ctx(), conn.HookID(), map[string]any{"text": "one"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.HandleWebhook(ctx(), conn.HookID(), map[string]any{"text": "two"}); !errors.Is(err, hookbridge.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestStartLoadsPersistedConnections(t *testing.T) {
	st := memory.New()
	room := "!room:example.com"
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "key", map[string]any{"name": "alerts"})
	_ = st.SetRoomAccountData(ctx(), room, connection.EventTypeWebhook, map[string]string{"hook-1": "key"})

	messenger := &fakeMessenger{}
	b, err := hookbridge.New(
		hookbridge.WithStore(st),
		hookbridge.WithMessenger(messenger),
		hookbridge.WithDirectory(fakeDirectory{}),
		hookbridge.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Start(ctx()); err != nil {
		t.Fatal(err)
	}

	ok, err := b.HandleWebhook(ctx(), "hook-1", map[string]any{"text": "restored"})
	if err != nil || !ok {
		t.Fatalf("HandleWebhook() = %v, %v", ok, err)
	}
}

func TestHandleStateEventLifecycle(t *testing.T) {
	b, st, _ := newBridge(t)
	room := "!room:example.com"

	conn, err := b.Provision(ctx(), room, map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	// Config update via state event.
	err = b.HandleStateEvent(ctx(), room, connection.StateEvent{
		Type:     connection.EventTypeWebhook,
		StateKey: conn.StateKey(),
		Content:  map[string]any{"name": "renamed"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if conn.Name() != "renamed" {
		t.Errorf("Name = %q after state update", conn.Name())
	}

	// Disabled content removes the connection.
	err = b.HandleStateEvent(ctx(), room, connection.StateEvent{
		Type:     connection.EventTypeWebhook,
		StateKey: conn.StateKey(),
		Content:  map[string]any{"disabled": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Connections().FindByStateKey(conn.StateKey()) != nil {
		t.Fatal("disabled connection still indexed")
	}

	// New state events from unseen keys create connections.
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "fresh", map[string]any{"name": "fresh hook"})
	err = b.HandleStateEvent(ctx(), room, connection.StateEvent{
		Type:     connection.EventTypeWebhook,
		StateKey: "fresh",
		Content:  map[string]any{"name": "fresh hook"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if b.Connections().FindByStateKey("fresh") == nil {
		t.Fatal("new connection not indexed")
	}

	// Unrelated event types are ignored.
	if err := b.HandleStateEvent(ctx(), room, connection.StateEvent{
		Type:     "m.room.topic",
		StateKey: "",
		Content:  map[string]any{"topic": "hello"},
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveConnection(t *testing.T) {
	b, st, _ := newBridge(t)
	room := "!room:example.com"

	conn, err := b.Provision(ctx(), room, map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.RemoveConnection(ctx(), conn); err != nil {
		t.Fatal(err)
	}

	if _, err := b.HandleWebhook(ctx(), conn.HookID(), map[string]any{"text": "hi"}); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}

	content, err := st.GetStateEvent(ctx(), room, connection.EventTypeWebhook, conn.StateKey())
	if err != nil {
		t.Fatal(err)
	}
	if disabled, _ := content["disabled"].(bool); !disabled {
		t.Errorf("expected disabled tombstone, got %v", content)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	b, _, _ := newBridge(t)

	payload := []byte(`{"text":"hi"}`)
	ts := time.Now().Unix()
	sig := signature.Sign(payload, "hook-1", ts)

	if !b.VerifyWebhookSignature("hook-1", payload, ts, sig) {
		t.Fatal("valid signature rejected")
	}
	if b.VerifyWebhookSignature("hook-2", payload, ts, sig) {
		t.Fatal("signature for wrong secret accepted")
	}
}
