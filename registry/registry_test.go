package registry_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/registry"
	"github.com/xraph/hookbridge/store/memory"
)

func ctx() context.Context { return context.Background() }

type nullMessenger struct{}

func (nullMessenger) SendRoomMessage(context.Context, string, connection.MessageContent, string) error {
	return nil
}
func (nullMessenger) SendRoomText(context.Context, string, string) error { return nil }

type nullIntent struct{ userID string }

func (i nullIntent) UserID() string                               { return i.userID }
func (nullIntent) EnsureRegistered(context.Context) error         { return nil }
func (nullIntent) Displayname(context.Context) (string, error)    { return "", nil }
func (nullIntent) SetDisplayname(context.Context, string) error   { return nil }

type nullDirectory struct{}

func (nullDirectory) BotUserID() string { return "@bot:example.com" }
func (nullDirectory) Domain() string    { return "example.com" }
func (nullDirectory) Intent(userID string) connection.Intent {
	return nullIntent{userID: userID}
}

func newRegistry(st *memory.Store, ttl time.Duration) (*registry.Registry, *connection.Service) {
	svc := connection.NewService(connection.Deps{
		Store:     st,
		Messenger: nullMessenger{},
		Directory: nullDirectory{},
		Logger:    slog.New(slog.DiscardHandler),
	})
	return registry.New(st, svc, registry.Config{CacheTTL: ttl}, slog.New(slog.DiscardHandler)), svc
}

func TestGetByHookIDLoadsFromState(t *testing.T) {
	st := memory.New()
	reg, svc := newRegistry(st, 0)

	conn, err := svc.Provision(ctx(), "!room:example.com", map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	// Not added explicitly: the first lookup loads from persisted state.
	got, err := reg.GetByHookID(ctx(), conn.HookID())
	if err != nil {
		t.Fatal(err)
	}
	if got.StateKey() != conn.StateKey() {
		t.Errorf("StateKey = %q, want %q", got.StateKey(), conn.StateKey())
	}

	if _, err := reg.GetByHookID(ctx(), "unknown"); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadSkipsDisabledAndInvalid(t *testing.T) {
	st := memory.New()
	reg, _ := newRegistry(st, 0)
	room := "!room:example.com"

	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "good", map[string]any{"name": "alerts"})
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "gone", map[string]any{"disabled": true})
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "bad", map[string]any{"name": 7})

	if err := reg.Load(ctx()); err != nil {
		t.Fatal(err)
	}

	conns := reg.ForRoom(room)
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(conns))
	}
	if conns[0].StateKey() != "good" {
		t.Errorf("StateKey = %q", conns[0].StateKey())
	}
}

func TestLoadCanonicalWinsOverLegacy(t *testing.T) {
	st := memory.New()
	reg, _ := newRegistry(st, 0)
	room := "!room:example.com"

	_ = st.SendStateEvent(ctx(), room, connection.LegacyEventTypeWebhook, "key", map[string]any{"name": "legacy name"})
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "key", map[string]any{"name": "canonical"})

	if err := reg.Load(ctx()); err != nil {
		t.Fatal(err)
	}

	conn := reg.FindByStateKey("key")
	if conn == nil {
		t.Fatal("connection not loaded")
	}
	if conn.Name() != "canonical" {
		t.Errorf("Name = %q, want canonical event to win", conn.Name())
	}
}

func TestLoadLegacyOnly(t *testing.T) {
	st := memory.New()
	reg, _ := newRegistry(st, 0)
	room := "!room:example.com"

	_ = st.SendStateEvent(ctx(), room, connection.LegacyEventTypeWebhook, "key", map[string]any{"name": "old alerts"})

	if err := reg.Load(ctx()); err != nil {
		t.Fatal(err)
	}
	if reg.FindByStateKey("key") == nil {
		t.Fatal("legacy-only connection not loaded")
	}
}

func TestForRoomOrdersByPriority(t *testing.T) {
	st := memory.New()
	reg, _ := newRegistry(st, 0)
	room := "!room:example.com"

	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "late", map[string]any{"name": "late", "priority": 500})
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "early", map[string]any{"name": "early", "priority": 1})
	_ = st.SendStateEvent(ctx(), room, connection.EventTypeWebhook, "mid", map[string]any{"name": "middle"})

	if err := reg.Load(ctx()); err != nil {
		t.Fatal(err)
	}

	conns := reg.ForRoom(room)
	if len(conns) != 3 {
		t.Fatalf("expected 3 connections, got %d", len(conns))
	}
	got := []string{conns[0].Name(), conns[1].Name(), conns[2].Name()}
	want := []string{"early", "middle", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAddRemove(t *testing.T) {
	st := memory.New()
	reg, svc := newRegistry(st, 0)

	conn, err := svc.Provision(ctx(), "!room:example.com", map[string]any{"name": "alerts"})
	if err != nil {
		t.Fatal(err)
	}

	reg.Add(conn)
	if reg.FindByStateKey(conn.StateKey()) != conn {
		t.Fatal("Add did not index the connection")
	}

	reg.Remove(conn)
	if reg.FindByStateKey(conn.StateKey()) != nil {
		t.Fatal("Remove left the connection indexed")
	}
}
