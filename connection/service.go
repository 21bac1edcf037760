package connection

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/xraph/hookbridge/id"
)

// Deps bundles the collaborators a connection needs. Logger falls back to
// slog.Default when nil.
type Deps struct {
	Store     Store
	Messenger Messenger
	Directory Directory
	Config    Config
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// Service creates connections, both fresh (provisioning) and from existing
// room state (startup or state replay).
type Service struct {
	deps Deps
}

// NewService creates a connection service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps.withDefaults()}
}

// Provision creates a new webhook connection in a room: it validates the
// requested configuration, mints a hook ID and state key, records the hook ID
// mapping in room account data, and writes the canonical state event. The
// account data write happens before the state event write so a crash in
// between never leaves a connection without its hook ID.
func (s *Service) Provision(ctx context.Context, roomID string, raw map[string]any) (*Connection, error) {
	st, err := ValidateState(raw, s.deps.Config.AllowJSTransformationFunctions)
	if err != nil {
		return nil, err
	}

	hookID := uuid.NewString()
	stateKey := id.NewStateKey().String()

	if err := EnsureRoomAccountData(ctx, s.deps.Store, roomID, hookID, stateKey, false); err != nil {
		return nil, err
	}
	if err := s.deps.Store.SendStateEvent(ctx, roomID, EventTypeWebhook, stateKey, st.Content()); err != nil {
		return nil, err
	}

	return newConnection(ctx, s.deps, roomID, hookID, stateKey, st), nil
}

// CreateFromState builds a connection from an existing state event. The hook
// ID is recovered from room account data; if the mapping is missing (lost
// account data, or state imported from another bridge) a new hook ID is
// minted and the mapping repaired.
func (s *Service) CreateFromState(ctx context.Context, roomID string, ev StateEvent) (*Connection, error) {
	st, err := ValidateState(ev.Content, s.deps.Config.AllowJSTransformationFunctions)
	if err != nil {
		return nil, err
	}

	data, err := s.deps.Store.GetRoomAccountData(ctx, roomID, EventTypeWebhook)
	if err != nil {
		return nil, err
	}

	var hookID string
	for hook, sk := range data {
		if sk == ev.StateKey {
			hookID = hook
			break
		}
	}
	if hookID == "" {
		hookID = uuid.NewString()
		s.deps.Logger.Warn("no hook ID on record for connection, minting a new one",
			"room_id", roomID, "state_key", ev.StateKey)
		if err := EnsureRoomAccountData(ctx, s.deps.Store, roomID, hookID, ev.StateKey, false); err != nil {
			return nil, err
		}
	}

	return newConnection(ctx, s.deps, roomID, hookID, ev.StateKey, st), nil
}

// EnsureRoomAccountData reconciles the hookID -> stateKey mapping held in
// room account data. With remove set, the mapping for hookID is dropped.
// Otherwise the mapping is added, and any other hook IDs pointing at the same
// state key (stale mints from earlier repairs) are cleaned up. The write is
// skipped when the stored data already matches.
func EnsureRoomAccountData(ctx context.Context, store Store, roomID, hookID, stateKey string, remove bool) error {
	data, err := store.GetRoomAccountData(ctx, roomID, EventTypeWebhook)
	if err != nil {
		return err
	}

	dirty := false
	if remove {
		if _, ok := data[hookID]; ok {
			delete(data, hookID)
			dirty = true
		}
	} else {
		if data[hookID] != stateKey {
			data[hookID] = stateKey
			dirty = true
		}
		for hook, sk := range data {
			if hook != hookID && sk == stateKey {
				delete(data, hook)
				dirty = true
			}
		}
	}

	if !dirty {
		return nil
	}
	return store.SetRoomAccountData(ctx, roomID, EventTypeWebhook, data)
}
