package connection

import "context"

// Store defines the persistence contract for connection state events and
// room-scoped account data. In a live bridge both surfaces ultimately live
// on the homeserver; the store is the bridge-local authority the connection
// code reconciles against.
type Store interface {
	// GetStateEvent returns the content of a state event, or
	// ErrStateEventNotFound.
	GetStateEvent(ctx context.Context, roomID, eventType, stateKey string) (map[string]any, error)

	// SendStateEvent writes (replaces) a state event.
	SendStateEvent(ctx context.Context, roomID, eventType, stateKey string, content map[string]any) error

	// ListStateEvents returns all state events of one type in a room.
	ListStateEvents(ctx context.Context, roomID, eventType string) ([]StateEvent, error)

	// GetRoomAccountData returns the room-scoped account data blob for an
	// event type. A missing blob yields an empty map, not an error.
	GetRoomAccountData(ctx context.Context, roomID, eventType string) (map[string]string, error)

	// SetRoomAccountData replaces the room-scoped account data blob.
	SetRoomAccountData(ctx context.Context, roomID, eventType string, data map[string]string) error
}
