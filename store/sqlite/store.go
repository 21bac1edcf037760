// Package sqlite implements the bridge store on SQLite via Grove ORM.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/hookbridge/connection"
	bridgestore "github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/webhook"
)

// compile-time interface check
var _ bridgestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("hookbridge/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Connection Store ====================

func (s *Store) GetStateEvent(ctx context.Context, roomID, eventType, stateKey string) (map[string]any, error) {
	m := new(stateEventModel)
	err := s.sdb.NewSelect(m).
		Where("room_id = ?", roomID).
		Where("event_type = ?", eventType).
		Where("state_key = ?", stateKey).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, connection.ErrStateEventNotFound
		}
		return nil, err
	}
	ev, err := fromStateEventModel(m)
	if err != nil {
		return nil, err
	}
	return ev.Content, nil
}

func (s *Store) SendStateEvent(ctx context.Context, roomID, eventType, stateKey string, content map[string]any) error {
	m, err := toStateEventModel(roomID, eventType, stateKey, content)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).
		OnConflict("(room_id, event_type, state_key) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListStateEvents(ctx context.Context, roomID, eventType string) ([]connection.StateEvent, error) {
	var models []stateEventModel
	err := s.sdb.NewSelect(&models).
		Where("room_id = ?", roomID).
		Where("event_type = ?", eventType).
		OrderExpr("state_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]connection.StateEvent, len(models))
	for i := range models {
		ev, err := fromStateEventModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = ev
	}
	return result, nil
}

func (s *Store) GetRoomAccountData(ctx context.Context, roomID, eventType string) (map[string]string, error) {
	m := new(accountDataModel)
	err := s.sdb.NewSelect(m).
		Where("room_id = ?", roomID).
		Where("event_type = ?", eventType).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var data map[string]string
	if err := json.Unmarshal([]byte(m.Data), &data); err != nil {
		return nil, fmt.Errorf("hookbridge/sqlite: decode account data: %w", err)
	}
	return data, nil
}

func (s *Store) SetRoomAccountData(ctx context.Context, roomID, eventType string, data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: marshal account data: %w", err)
	}

	t := now()
	m := &accountDataModel{
		RoomID:    roomID,
		EventType: eventType,
		Data:      string(raw),
		CreatedAt: t,
		UpdatedAt: t,
	}
	_, err = s.sdb.NewInsert(m).
		OnConflict("(room_id, event_type) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) Rooms(ctx context.Context) ([]string, error) {
	var models []stateEventModel
	err := s.sdb.NewSelect(&models).
		ColumnExpr("DISTINCT room_id").
		OrderExpr("room_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	rooms := make([]string, len(models))
	for i := range models {
		rooms[i] = models[i].RoomID
	}
	return rooms, nil
}

// ==================== Webhook Store ====================

func (s *Store) RecordWebhook(ctx context.Context, evt *webhook.Event) error {
	m, err := toWebhookModel(evt)
	if err != nil {
		return err
	}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	// Trim the per-hook log to the retention bound.
	_, err = s.sdb.NewDelete((*webhookModel)(nil)).
		Where("hook_id = ?", evt.HookID).
		Where("id NOT IN (SELECT id FROM hookbridge_webhooks WHERE hook_id = ? ORDER BY received_at DESC LIMIT ?)",
			evt.HookID, webhook.MaxRecent).
		Exec(ctx)
	return err
}

func (s *Store) ListRecentWebhooks(ctx context.Context, hookID string, limit int) ([]*webhook.Event, error) {
	if limit <= 0 || limit > webhook.MaxRecent {
		limit = webhook.MaxRecent
	}

	var models []webhookModel
	err := s.sdb.NewSelect(&models).
		Where("hook_id = ?", hookID).
		OrderExpr("received_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*webhook.Event, len(models))
	for i := range models {
		evt, err := fromWebhookModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = evt
	}
	return result, nil
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
