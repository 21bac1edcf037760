// Package registry maintains the set of live webhook connections, indexed by
// their secret hook IDs, and keeps that set in sync with persisted room state.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/store"
)

// ErrNotFound is returned when no connection exists for a hook ID.
var ErrNotFound = errors.New("registry: no connection for hook")

// Registry is the in-memory cached index of webhook connections.
type Registry struct {
	store    store.Store
	svc      *connection.Service
	cacheTTL time.Duration

	mu         sync.RWMutex
	byHook     map[string]*connection.Connection // keyed by hook ID
	byStateKey map[string]*connection.Connection // keyed by state key
	lastLoad   time.Time

	logger *slog.Logger
}

// Config configures the registry.
type Config struct {
	// CacheTTL bounds how long the loaded connection set is trusted before
	// it is refreshed from the store. Zero disables expiry.
	CacheTTL time.Duration
}

// New creates a Registry backed by the given store and connection service.
func New(st store.Store, svc *connection.Service, cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:      st,
		svc:        svc,
		cacheTTL:   cfg.CacheTTL,
		byHook:     make(map[string]*connection.Connection),
		byStateKey: make(map[string]*connection.Connection),
		logger:     logger,
	}
}

// GetByHookID resolves a hook ID to its connection, refreshing the cache
// first when it has expired or was never loaded.
func (r *Registry) GetByHookID(ctx context.Context, hookID string) (*connection.Connection, error) {
	r.mu.RLock()
	expired := r.lastLoad.IsZero() || r.cacheExpired()
	conn, ok := r.byHook[hookID]
	r.mu.RUnlock()

	if ok && !expired {
		return conn, nil
	}

	if expired {
		if err := r.Load(ctx); err != nil {
			return nil, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok = r.byHook[hookID]
	if !ok {
		return nil, ErrNotFound
	}
	return conn, nil
}

// FindByStateKey returns the connection backed by the given state key, or nil.
func (r *Registry) FindByStateKey(stateKey string) *connection.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byStateKey[stateKey]
}

// All returns every live connection, in no particular order.
func (r *Registry) All() []*connection.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*connection.Connection, 0, len(r.byStateKey))
	for _, conn := range r.byStateKey {
		conns = append(conns, conn)
	}
	return conns
}

// ForRoom returns the connections in a room, ordered by ascending priority.
func (r *Registry) ForRoom(roomID string) []*connection.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []*connection.Connection
	for _, conn := range r.byStateKey {
		if conn.RoomID() == roomID {
			conns = append(conns, conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool {
		return conns[i].Priority() < conns[j].Priority()
	})
	return conns
}

// Add registers a connection, replacing any previous entry for its hook ID
// or state key.
func (r *Registry) Add(conn *connection.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHook[conn.HookID()] = conn
	r.byStateKey[conn.StateKey()] = conn
}

// Remove drops a connection from the index.
func (r *Registry) Remove(conn *connection.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHook, conn.HookID())
	delete(r.byStateKey, conn.StateKey())
}

// Load rebuilds the index from persisted room state. Both the canonical and
// the legacy event types are scanned; when both exist for the same state key
// the canonical one wins. Disabled events and events with invalid
// configuration are skipped.
func (r *Registry) Load(ctx context.Context) error {
	rooms, err := r.store.Rooms(ctx)
	if err != nil {
		return err
	}

	byHook := make(map[string]*connection.Connection)
	byStateKey := make(map[string]*connection.Connection)

	for _, roomID := range rooms {
		events, err := r.roomEvents(ctx, roomID)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.Disabled() {
				continue
			}
			conn, err := r.svc.CreateFromState(ctx, roomID, ev)
			if err != nil {
				r.logger.Warn("skipping connection with invalid state",
					"room_id", roomID, "state_key", ev.StateKey, "error", err)
				continue
			}
			byHook[conn.HookID()] = conn
			byStateKey[conn.StateKey()] = conn
		}
	}

	r.mu.Lock()
	r.byHook = byHook
	r.byStateKey = byStateKey
	r.lastLoad = time.Now()
	r.mu.Unlock()
	return nil
}

// roomEvents merges the canonical and legacy state events for one room,
// canonical winning per state key.
func (r *Registry) roomEvents(ctx context.Context, roomID string) ([]connection.StateEvent, error) {
	canonical, err := r.store.ListStateEvents(ctx, roomID, connection.EventTypeWebhook)
	if err != nil {
		return nil, err
	}
	legacy, err := r.store.ListStateEvents(ctx, roomID, connection.LegacyEventTypeWebhook)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(canonical))
	events := make([]connection.StateEvent, 0, len(canonical)+len(legacy))
	for _, ev := range canonical {
		seen[ev.StateKey] = true
		events = append(events, ev)
	}
	for _, ev := range legacy {
		if !seen[ev.StateKey] {
			events = append(events, ev)
		}
	}
	return events, nil
}

// cacheExpired reports whether the TTL has elapsed. Callers hold the lock.
func (r *Registry) cacheExpired() bool {
	if r.cacheTTL == 0 {
		return false
	}
	return time.Since(r.lastLoad) > r.cacheTTL
}
