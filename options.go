package hookbridge

import (
	"log/slog"
	"time"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/observability"
	"github.com/xraph/hookbridge/ratelimit"
	"github.com/xraph/hookbridge/registry"
	"github.com/xraph/hookbridge/store"
)

// Bridge is the root webhook bridge: it resolves inbound webhooks to room
// connections and manages the connection lifecycle.
type Bridge struct {
	config    Config
	store     store.Store
	messenger connection.Messenger
	directory connection.Directory

	connSvc  *connection.Service
	registry *registry.Registry
	limiter  *ratelimit.Limiter

	metrics *observability.Metrics
	tracer  *observability.Tracer
	logger  *slog.Logger
}

// Option configures a Bridge instance.
type Option func(*Bridge) error

// New creates a new Bridge with the given options.
func New(opts ...Option) (*Bridge, error) {
	b := &Bridge{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.store == nil {
		return nil, ErrNoStore
	}
	if b.messenger == nil {
		return nil, ErrNoMessenger
	}
	if b.directory == nil {
		return nil, ErrNoDirectory
	}
	b.wireServices()
	return b, nil
}

// WithStore sets the persistence backend for the Bridge instance.
func WithStore(s store.Store) Option {
	return func(b *Bridge) error {
		b.store = s
		return nil
	}
}

// WithMessenger sets the room message sender.
func WithMessenger(m connection.Messenger) Option {
	return func(b *Bridge) error {
		b.messenger = m
		return nil
	}
}

// WithDirectory sets the user directory for sender identities.
func WithDirectory(d connection.Directory) Option {
	return func(b *Bridge) error {
		b.directory = d
		return nil
	}
}

// WithLogger sets the structured logger for the Bridge instance.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) error {
		b.logger = logger
		return nil
	}
}

// WithMetrics sets the metric instruments used by the webhook path.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bridge) error {
		b.metrics = m
		return nil
	}
}

// WithTracer sets the tracer used by the webhook path.
func WithTracer(t *observability.Tracer) Option {
	return func(b *Bridge) error {
		b.tracer = t
		return nil
	}
}

// WithJSTransformationFunctions enables user-supplied transformation
// functions on connections.
func WithJSTransformationFunctions(allow bool) Option {
	return func(b *Bridge) error {
		b.config.AllowJSTransformationFunctions = allow
		return nil
	}
}

// WithUserIDPrefix makes webhook messages arrive from synthetic
// per-connection users with the given localpart prefix.
func WithUserIDPrefix(prefix string) Option {
	return func(b *Bridge) error {
		b.config.UserIDPrefix = prefix
		return nil
	}
}

// WithPublicURL sets the externally reachable base for minted hook URLs.
func WithPublicURL(url string) Option {
	return func(b *Bridge) error {
		b.config.PublicURL = url
		return nil
	}
}

// WithScriptTimeout bounds a single transformation function execution.
func WithScriptTimeout(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.ScriptTimeout = d
		return nil
	}
}

// WithWebhookRateLimit sets the per-hook inbound rate limit in webhooks per
// second.
func WithWebhookRateLimit(n int) Option {
	return func(b *Bridge) error {
		b.config.WebhookRateLimit = n
		return nil
	}
}

// WithCacheTTL sets the TTL for the registry's connection index.
func WithCacheTTL(d time.Duration) Option {
	return func(b *Bridge) error {
		b.config.CacheTTL = d
		return nil
	}
}
