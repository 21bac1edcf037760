package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/internal/entity"
	"github.com/xraph/hookbridge/webhook"
)

// webhookModel is the JSON representation stored in Redis.
type webhookModel struct {
	ID         string    `json:"id"`
	HookID     string    `json:"hook_id"`
	RoomID     string    `json:"room_id"`
	Payload    any       `json:"payload,omitempty"`
	Success    bool      `json:"success"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toWebhookModel(evt *webhook.Event) *webhookModel {
	return &webhookModel{
		ID:         evt.ID.String(),
		HookID:     evt.HookID,
		RoomID:     evt.RoomID,
		Payload:    evt.Payload,
		Success:    evt.Success,
		ReceivedAt: evt.ReceivedAt,
		CreatedAt:  evt.CreatedAt,
		UpdatedAt:  evt.UpdatedAt,
	}
}

func fromWebhookModel(m *webhookModel) (*webhook.Event, error) {
	evtID, err := id.ParseWebhookID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse webhook ID %q: %w", m.ID, err)
	}
	return &webhook.Event{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         evtID,
		HookID:     m.HookID,
		RoomID:     m.RoomID,
		Payload:    m.Payload,
		Success:    m.Success,
		ReceivedAt: m.ReceivedAt,
	}, nil
}

// RecordWebhook prepends the event to the hook's list and trims it to
// webhook.MaxRecent entries.
func (s *Store) RecordWebhook(ctx context.Context, evt *webhook.Event) error {
	raw, err := json.Marshal(toWebhookModel(evt))
	if err != nil {
		return fmt.Errorf("hookbridge/redis: marshal webhook event: %w", err)
	}

	key := webhookListKey(evt.HookID)
	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(webhook.MaxRecent)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hookbridge/redis: record webhook: %w", err)
	}
	return nil
}

// ListRecentWebhooks returns up to limit events for a hook, newest first.
func (s *Store) ListRecentWebhooks(ctx context.Context, hookID string, limit int) ([]*webhook.Event, error) {
	stop := int64(webhook.MaxRecent) - 1
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raws, err := s.rdb.LRange(ctx, webhookListKey(hookID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("hookbridge/redis: list recent webhooks: %w", err)
	}

	result := make([]*webhook.Event, 0, len(raws))
	for _, raw := range raws {
		var m webhookModel
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("hookbridge/redis: decode webhook event: %w", err)
		}
		evt, err := fromWebhookModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, evt)
	}
	return result, nil
}
