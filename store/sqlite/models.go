package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/internal/entity"
	"github.com/xraph/hookbridge/webhook"
)

// --- State event models ---

type stateEventModel struct {
	grove.BaseModel `grove:"table:hookbridge_state_events"`

	RoomID    string    `grove:"room_id,pk"`
	EventType string    `grove:"event_type,pk"`
	StateKey  string    `grove:"state_key,pk"`
	Content   string    `grove:"content"` // JSON object
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toStateEventModel(roomID, eventType, stateKey string, content map[string]any) (*stateEventModel, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal state event content: %w", err)
	}
	t := now()
	return &stateEventModel{
		RoomID:    roomID,
		EventType: eventType,
		StateKey:  stateKey,
		Content:   string(raw),
		CreatedAt: t,
		UpdatedAt: t,
	}, nil
}

func fromStateEventModel(m *stateEventModel) (connection.StateEvent, error) {
	var content map[string]any
	if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
		return connection.StateEvent{}, fmt.Errorf("decode state event content: %w", err)
	}
	return connection.StateEvent{
		Type:     m.EventType,
		StateKey: m.StateKey,
		Content:  content,
	}, nil
}

// --- Account data models ---

type accountDataModel struct {
	grove.BaseModel `grove:"table:hookbridge_account_data"`

	RoomID    string    `grove:"room_id,pk"`
	EventType string    `grove:"event_type,pk"`
	Data      string    `grove:"data"` // JSON object
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

// --- Webhook models ---

type webhookModel struct {
	grove.BaseModel `grove:"table:hookbridge_webhooks"`

	ID         string    `grove:"id,pk"`
	HookID     string    `grove:"hook_id"`
	RoomID     string    `grove:"room_id"`
	Payload    string    `grove:"payload"` // JSON
	Success    bool      `grove:"success"`
	ReceivedAt time.Time `grove:"received_at"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toWebhookModel(evt *webhook.Event) (*webhookModel, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}
	return &webhookModel{
		ID:         evt.ID.String(),
		HookID:     evt.HookID,
		RoomID:     evt.RoomID,
		Payload:    string(payload),
		Success:    evt.Success,
		ReceivedAt: evt.ReceivedAt,
		CreatedAt:  evt.CreatedAt,
		UpdatedAt:  evt.UpdatedAt,
	}, nil
}

func fromWebhookModel(m *webhookModel) (*webhook.Event, error) {
	evtID, err := id.ParseWebhookID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse webhook ID %q: %w", m.ID, err)
	}

	var payload any
	if m.Payload != "" {
		if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
			return nil, fmt.Errorf("decode webhook payload: %w", err)
		}
	}

	return &webhook.Event{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         evtID,
		HookID:     m.HookID,
		RoomID:     m.RoomID,
		Payload:    payload,
		Success:    m.Success,
		ReceivedAt: m.ReceivedAt,
	}, nil
}
