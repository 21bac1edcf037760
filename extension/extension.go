package extension

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/api"
)

// Extension mounts Hookbridge into a Forge application. It can also be used
// standalone: Init builds the bridge and Handler returns the HTTP surface.
type Extension struct {
	config Config
	opts   []hookbridge.Option
	logger *slog.Logger

	bridge *hookbridge.Bridge
}

// New creates a new Hookbridge Forge extension.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init builds the bridge from the configured options, runs store migrations
// unless disabled, and loads persisted connections.
func (e *Extension) Init(ctx context.Context) error {
	opts := e.config.ToBridgeOptions()
	opts = append(opts, hookbridge.WithLogger(e.logger))
	opts = append(opts, e.opts...)

	b, err := hookbridge.New(opts...)
	if err != nil {
		return fmt.Errorf("build bridge: %w", err)
	}

	if !e.config.DisableMigrate {
		if err := b.Store().Migrate(ctx); err != nil {
			return fmt.Errorf("migrate store: %w", err)
		}
	}

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}

	e.bridge = b
	return nil
}

// Bridge returns the built bridge. It is nil before Init.
func (e *Extension) Bridge() *hookbridge.Bridge { return e.bridge }

// Handler returns the HTTP surface: the inbound webhook endpoint and the
// admin provisioning API. This can be used standalone without Forge routing.
func (e *Extension) Handler() http.Handler {
	return api.NewHandler(e.bridge, e.logger)
}

// RegisterRoutes mounts the admin API into a Forge router with OpenAPI
// metadata. No-op when route registration is disabled.
func (e *Extension) RegisterRoutes(router forge.Router, log forge.Logger) {
	if e.config.DisableRoutes {
		return
	}
	api.NewForgeAPI(e.bridge, log).RegisterRoutes(router)
}

// HealthCheck reports whether the bridge's store is reachable.
func (e *Extension) HealthCheck(ctx context.Context) error {
	if e.bridge == nil {
		return fmt.Errorf("hookbridge extension not initialized")
	}
	return e.bridge.Store().Ping(ctx)
}

// BasePath returns the configured URL prefix.
func (e *Extension) BasePath() string { return e.config.BasePath }
