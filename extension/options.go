package extension

import (
	"log/slog"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/store"
)

// ExtOption configures the Hookbridge Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend via a bridge option.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, hookbridge.WithStore(s))
	}
}

// WithMessenger sets the room message sender via a bridge option.
func WithMessenger(m connection.Messenger) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, hookbridge.WithMessenger(m))
	}
}

// WithDirectory sets the user directory via a bridge option.
func WithDirectory(d connection.Directory) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, hookbridge.WithDirectory(d))
	}
}

// WithLogger sets the structured logger for the extension and the bridge.
func WithLogger(logger *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithPrefix sets the URL prefix for all bridge routes.
func WithPrefix(prefix string) ExtOption {
	return func(e *Extension) {
		e.config.BasePath = prefix
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithBridgeOption appends a raw hookbridge.Option to the extension.
func WithBridgeOption(opt hookbridge.Option) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, opt)
	}
}

// WithDisableRoutes disables automatic route registration.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrations disables automatic database migration on Init.
func WithDisableMigrations() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
