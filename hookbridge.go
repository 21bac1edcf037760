package hookbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/hookbridge/connection"
	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/internal/entity"
	"github.com/xraph/hookbridge/ratelimit"
	"github.com/xraph/hookbridge/registry"
	"github.com/xraph/hookbridge/signature"
	"github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/webhook"
)

// wireServices initializes the internal services after options have been applied.
func (b *Bridge) wireServices() {
	b.connSvc = connection.NewService(connection.Deps{
		Store:     b.store,
		Messenger: b.messenger,
		Directory: b.directory,
		Config: connection.Config{
			AllowJSTransformationFunctions: b.config.AllowJSTransformationFunctions,
			UserIDPrefix:                   b.config.UserIDPrefix,
			PublicURL:                      b.config.PublicURL,
			ScriptTimeout:                  b.config.ScriptTimeout,
		},
		Logger: b.logger,
	})

	b.registry = registry.New(b.store, b.connSvc, registry.Config{
		CacheTTL: b.config.CacheTTL,
	}, b.logger)

	b.limiter = ratelimit.New()
}

// Start loads the connection index from persisted room state.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.registry.Load(ctx); err != nil {
		return fmt.Errorf("hookbridge: load connections: %w", err)
	}
	if b.metrics != nil {
		b.metrics.ActiveConnections.Set(float64(len(b.registry.All())))
	}
	return nil
}

// HandleWebhook routes one inbound webhook payload to its connection.
//
// The critical path:
//  1. Resolve the hook ID to a live connection (registry.ErrNotFound if none).
//  2. Apply the per-hook rate limit.
//  3. Run the connection's payload pipeline and emit the room message.
//  4. Record the webhook in the bounded recent-event log.
//
// The boolean reports whether processing succeeded; false with a nil error
// means the fail-soft fallback message was posted instead.
func (b *Bridge) HandleWebhook(ctx context.Context, hookID string, payload any) (bool, error) {
	conn, err := b.registry.GetByHookID(ctx, hookID)
	if err != nil {
		return false, err
	}

	if !b.limiter.Allow(hookID, b.config.WebhookRateLimit) {
		return false, ErrRateLimited
	}

	start := time.Now()
	var span trace.Span
	if b.tracer != nil {
		ctx, span = b.tracer.StartWebhookSpan(ctx, conn.RoomID(), conn.StateKey())
	}

	ok, err := conn.OnGenericHook(ctx, payload)

	if b.tracer != nil {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		b.tracer.EndWebhookSpan(span, ok && err == nil, int(time.Since(start).Milliseconds()), errStr)
	}

	b.recordWebhook(ctx, conn, payload, ok && err == nil)
	if b.metrics != nil {
		outcome := "success"
		switch {
		case err != nil:
			outcome = "error"
		case !ok:
			outcome = "fallback"
			b.metrics.TransformFailuresTotal.Inc()
		default:
			b.metrics.MessagesSentTotal.Inc()
		}
		b.metrics.RecordWebhook(outcome, time.Since(start).Seconds())
	}

	b.logger.DebugContext(ctx, "webhook handled",
		"room_id", conn.RoomID(),
		"state_key", conn.StateKey(),
		"success", ok,
		"duration", time.Since(start),
	)
	return ok, err
}

// recordWebhook appends to the recent-event log. Failures are logged, not
// propagated: the log is diagnostic, the room message already went out.
func (b *Bridge) recordWebhook(ctx context.Context, conn *connection.Connection, payload any, success bool) {
	evt := &webhook.Event{
		Entity:     entity.New(),
		ID:         id.NewWebhookID(),
		HookID:     conn.HookID(),
		RoomID:     conn.RoomID(),
		Payload:    payload,
		Success:    success,
		ReceivedAt: time.Now().UTC(),
	}
	if err := b.store.RecordWebhook(ctx, evt); err != nil {
		b.logger.Warn("failed to record webhook event",
			"room_id", conn.RoomID(), "error", err)
	}
}

// Provision creates a new webhook connection in a room and registers it.
func (b *Bridge) Provision(ctx context.Context, roomID string, config map[string]any) (*connection.Connection, error) {
	conn, err := b.connSvc.Provision(ctx, roomID, config)
	if err != nil {
		return nil, err
	}
	b.registry.Add(conn)
	if b.metrics != nil {
		b.metrics.ActiveConnections.Inc()
	}
	return conn, nil
}

// RemoveConnection soft-removes a connection and drops it from the index.
func (b *Bridge) RemoveConnection(ctx context.Context, conn *connection.Connection) error {
	if err := conn.OnRemove(ctx); err != nil {
		return err
	}
	b.registry.Remove(conn)
	if b.metrics != nil {
		b.metrics.ActiveConnections.Dec()
	}
	return nil
}

// HandleStateEvent routes a room state event change to the connection it
// concerns. New events create connections; disabled content removes them;
// everything else is a config update.
func (b *Bridge) HandleStateEvent(ctx context.Context, roomID string, ev connection.StateEvent) error {
	if ev.Type != connection.EventTypeWebhook && ev.Type != connection.LegacyEventTypeWebhook {
		return nil
	}

	conn := b.registry.FindByStateKey(ev.StateKey)

	if ev.Disabled() {
		if conn != nil {
			b.registry.Remove(conn)
			if b.metrics != nil {
				b.metrics.ActiveConnections.Dec()
			}
		}
		return nil
	}

	if conn == nil {
		created, err := b.connSvc.CreateFromState(ctx, roomID, ev)
		if err != nil {
			return err
		}
		b.registry.Add(created)
		if b.metrics != nil {
			b.metrics.ActiveConnections.Inc()
		}
		return nil
	}

	return conn.OnStateUpdate(ctx, ev.Content)
}

// VerifyWebhookSignature checks an optional HMAC signature on an inbound
// webhook. The hook ID doubles as the shared secret.
func (b *Bridge) VerifyWebhookSignature(hookID string, payload []byte, timestamp int64, sig string) bool {
	return signature.Verify(payload, hookID, timestamp, sig)
}

// GetConnection resolves a hook ID to its connection.
func (b *Bridge) GetConnection(ctx context.Context, hookID string) (*connection.Connection, error) {
	conn, err := b.registry.GetByHookID(ctx, hookID)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, err
	}
	return conn, err
}

// ProvisionerInfo describes the webhook connection service for discovery.
func (b *Bridge) ProvisionerInfo() connection.ServiceInfo {
	return connection.ProvisionerInfo(b.directory.BotUserID())
}

// Connections returns the connection registry.
func (b *Bridge) Connections() *registry.Registry {
	return b.registry
}

// Store returns the underlying store.
func (b *Bridge) Store() store.Store {
	return b.store
}

// Config returns the active configuration.
func (b *Bridge) Config() Config {
	return b.config
}
