// Package memory provides an in-memory Store implementation for unit testing.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/connection"
	bridgestore "github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/webhook"
)

// compile-time interface check.
var _ bridgestore.Store = (*Store)(nil)

// stateKeyed indexes state events by event type, then state key.
type stateKeyed map[string]map[string]map[string]any

// Store is an in-memory implementation of store.Store for testing.
type Store struct {
	mu sync.RWMutex

	state       map[string]stateKeyed               // keyed by room ID
	accountData map[string]map[string]string        // keyed by room ID + event type
	webhooks    map[string][]*webhook.Event         // keyed by hook ID, newest first

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		state:       make(map[string]stateKeyed),
		accountData: make(map[string]map[string]string),
		webhooks:    make(map[string][]*webhook.Event),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return hookbridge.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// connection.Store
// ──────────────────────────────────────────────────

// GetStateEvent returns the content of a state event.
func (s *Store) GetStateEvent(_ context.Context, roomID, eventType, stateKey string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, hookbridge.ErrStoreClosed
	}

	content, ok := s.state[roomID][eventType][stateKey]
	if !ok {
		return nil, connection.ErrStateEventNotFound
	}
	return maps.Clone(content), nil
}

// SendStateEvent writes (replaces) a state event.
func (s *Store) SendStateEvent(_ context.Context, roomID, eventType, stateKey string, content map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hookbridge.ErrStoreClosed
	}

	room, ok := s.state[roomID]
	if !ok {
		room = make(stateKeyed)
		s.state[roomID] = room
	}
	byKey, ok := room[eventType]
	if !ok {
		byKey = make(map[string]map[string]any)
		room[eventType] = byKey
	}
	byKey[stateKey] = maps.Clone(content)
	return nil
}

// ListStateEvents returns all state events of one type in a room, ordered by
// state key.
func (s *Store) ListStateEvents(_ context.Context, roomID, eventType string) ([]connection.StateEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, hookbridge.ErrStoreClosed
	}

	byKey := s.state[roomID][eventType]
	result := make([]connection.StateEvent, 0, len(byKey))
	for stateKey, content := range byKey {
		result = append(result, connection.StateEvent{
			Type:     eventType,
			StateKey: stateKey,
			Content:  maps.Clone(content),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StateKey < result[j].StateKey
	})
	return result, nil
}

// GetRoomAccountData returns the account data blob for an event type. Missing
// data yields an empty map.
func (s *Store) GetRoomAccountData(_ context.Context, roomID, eventType string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, hookbridge.ErrStoreClosed
	}

	data, ok := s.accountData[roomID+"\x00"+eventType]
	if !ok {
		return map[string]string{}, nil
	}
	return maps.Clone(data), nil
}

// SetRoomAccountData replaces the account data blob for an event type.
func (s *Store) SetRoomAccountData(_ context.Context, roomID, eventType string, data map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hookbridge.ErrStoreClosed
	}

	s.accountData[roomID+"\x00"+eventType] = maps.Clone(data)
	return nil
}

// Rooms lists every room with connection state.
func (s *Store) Rooms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, hookbridge.ErrStoreClosed
	}

	rooms := make([]string, 0, len(s.state))
	for roomID := range s.state {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms, nil
}

// ──────────────────────────────────────────────────
// webhook.Store
// ──────────────────────────────────────────────────

// RecordWebhook appends an event to the hook's recent log, newest first.
func (s *Store) RecordWebhook(_ context.Context, evt *webhook.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hookbridge.ErrStoreClosed
	}

	log := append([]*webhook.Event{evt}, s.webhooks[evt.HookID]...)
	if len(log) > webhook.MaxRecent {
		log = log[:webhook.MaxRecent]
	}
	s.webhooks[evt.HookID] = log
	return nil
}

// ListRecentWebhooks returns up to limit events for a hook, newest first.
func (s *Store) ListRecentWebhooks(_ context.Context, hookID string, limit int) ([]*webhook.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, hookbridge.ErrStoreClosed
	}

	log := s.webhooks[hookID]
	if limit > 0 && limit < len(log) {
		log = log[:limit]
	}

	result := make([]*webhook.Event, len(log))
	copy(result, log)
	return result, nil
}
