package hookbridge

import (
	"errors"

	"github.com/xraph/hookbridge/registry"
)

// ErrHookNotFound is returned when no connection exists for a hook ID. It is
// the registry's sentinel, re-exported for callers of Bridge.HandleWebhook.
var ErrHookNotFound = registry.ErrNotFound

// Sentinel errors returned by Bridge operations.
var (
	// ErrNoStore is returned when a Bridge is created without a store.
	ErrNoStore = errors.New("hookbridge: store is required")

	// ErrNoMessenger is returned when a Bridge is created without a messenger.
	ErrNoMessenger = errors.New("hookbridge: messenger is required")

	// ErrNoDirectory is returned when a Bridge is created without a user directory.
	ErrNoDirectory = errors.New("hookbridge: user directory is required")

	// ErrRateLimited is returned when a webhook exceeds its hook's rate limit.
	ErrRateLimited = errors.New("hookbridge: webhook rate limited")

	// ErrStoreClosed is returned when a store operation is attempted after the store is closed.
	ErrStoreClosed = errors.New("hookbridge: store is closed")

	// ErrMigrationFailed is returned when a database migration fails.
	ErrMigrationFailed = errors.New("hookbridge: migration failed")
)
