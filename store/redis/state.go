package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/xraph/hookbridge/connection"
)

// GetStateEvent returns the content of a state event.
func (s *Store) GetStateEvent(ctx context.Context, roomID, eventType, stateKey string) (map[string]any, error) {
	var content map[string]any
	if err := s.getEntity(ctx, stateKeyFor(roomID, eventType, stateKey), &content); err != nil {
		if isNotFound(err) {
			return nil, connection.ErrStateEventNotFound
		}
		return nil, fmt.Errorf("hookbridge/redis: get state event: %w", err)
	}
	return content, nil
}

// SendStateEvent writes (replaces) a state event and maintains the state key
// and room indexes.
func (s *Store) SendStateEvent(ctx context.Context, roomID, eventType, stateKey string, content map[string]any) error {
	if err := s.setEntity(ctx, stateKeyFor(roomID, eventType, stateKey), content); err != nil {
		return fmt.Errorf("hookbridge/redis: send state event: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, stateSetKey(roomID, eventType), stateKey)
	pipe.SAdd(ctx, sRooms, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hookbridge/redis: send state event indexes: %w", err)
	}
	return nil
}

// ListStateEvents returns all state events of one type in a room, ordered by
// state key.
func (s *Store) ListStateEvents(ctx context.Context, roomID, eventType string) ([]connection.StateEvent, error) {
	keys, err := s.rdb.SMembers(ctx, stateSetKey(roomID, eventType)).Result()
	if err != nil {
		return nil, fmt.Errorf("hookbridge/redis: list state events: %w", err)
	}
	sort.Strings(keys)

	result := make([]connection.StateEvent, 0, len(keys))
	for _, stateKey := range keys {
		var content map[string]any
		if err := s.getEntity(ctx, stateKeyFor(roomID, eventType, stateKey), &content); err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("hookbridge/redis: list state events: %w", err)
		}
		result = append(result, connection.StateEvent{
			Type:     eventType,
			StateKey: stateKey,
			Content:  content,
		})
	}
	return result, nil
}

// GetRoomAccountData returns the account data blob for an event type. Missing
// data yields an empty map.
func (s *Store) GetRoomAccountData(ctx context.Context, roomID, eventType string) (map[string]string, error) {
	var data map[string]string
	if err := s.getEntity(ctx, accountDataKey(roomID, eventType), &data); err != nil {
		if isNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("hookbridge/redis: get account data: %w", err)
	}
	return data, nil
}

// SetRoomAccountData replaces the account data blob for an event type.
func (s *Store) SetRoomAccountData(ctx context.Context, roomID, eventType string, data map[string]string) error {
	if err := s.setEntity(ctx, accountDataKey(roomID, eventType), data); err != nil {
		return fmt.Errorf("hookbridge/redis: set account data: %w", err)
	}
	return nil
}

// Rooms lists every room with connection state.
func (s *Store) Rooms(ctx context.Context) ([]string, error) {
	rooms, err := s.rdb.SMembers(ctx, sRooms).Result()
	if err != nil {
		return nil, fmt.Errorf("hookbridge/redis: list rooms: %w", err)
	}
	sort.Strings(rooms)
	return rooms, nil
}
