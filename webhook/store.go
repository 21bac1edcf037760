// Package webhook defines the inbound webhook event record and its
// persistence contract.
package webhook

import "context"

// MaxRecent caps how many events a store retains per hook.
const MaxRecent = 100

// Store defines the persistence contract for the recent-webhook log.
type Store interface {
	// RecordWebhook appends an event to the hook's recent log, trimming
	// the log to MaxRecent entries.
	RecordWebhook(ctx context.Context, evt *Event) error

	// ListRecentWebhooks returns up to limit events for a hook, newest first.
	ListRecentWebhooks(ctx context.Context, hookID string, limit int) ([]*Event, error)
}
