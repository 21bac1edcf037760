package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Hookbridge store (SQLite).
var Migrations = migrate.NewGroup("hookbridge")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_hookbridge_state_events",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS hookbridge_state_events (
    room_id     TEXT NOT NULL,
    event_type  TEXT NOT NULL,
    state_key   TEXT NOT NULL,
    content     TEXT NOT NULL DEFAULT '{}',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (room_id, event_type, state_key)
);

CREATE INDEX IF NOT EXISTS idx_hookbridge_state_events_room ON hookbridge_state_events (room_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS hookbridge_state_events`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_hookbridge_account_data",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS hookbridge_account_data (
    room_id     TEXT NOT NULL,
    event_type  TEXT NOT NULL,
    data        TEXT NOT NULL DEFAULT '{}',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (room_id, event_type)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS hookbridge_account_data`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_hookbridge_webhooks",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS hookbridge_webhooks (
    id          TEXT PRIMARY KEY,
    hook_id     TEXT NOT NULL DEFAULT '',
    room_id     TEXT NOT NULL DEFAULT '',
    payload     TEXT,
    success     INTEGER NOT NULL DEFAULT 0,
    received_at TEXT NOT NULL DEFAULT (datetime('now')),
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_hookbridge_webhooks_hook ON hookbridge_webhooks (hook_id, received_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS hookbridge_webhooks`)
				return err
			},
		},
	)
}
