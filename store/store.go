// Package store defines the composite Store interface for all bridge
// persistence.
//
// Each subsystem defines its own store interface, and the aggregate Store
// composes them all.
package store

import (
	"context"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/webhook"
)

// Store is the aggregate persistence interface.
type Store interface {
	connection.Store
	webhook.Store

	// Rooms lists every room the store holds connection state for.
	Rooms(ctx context.Context) ([]string, error)

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
