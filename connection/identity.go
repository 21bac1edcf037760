package connection

import (
	"context"
	"regexp"
	"strings"
)

// Intent is an interactive identity capable of profile management and
// message sending on behalf of one user.
type Intent interface {
	// UserID returns the full user ID this intent acts as.
	UserID() string

	// EnsureRegistered makes sure the user exists on the homeserver.
	EnsureRegistered(ctx context.Context) error

	// Displayname returns the user's current global display name. An error
	// means the profile is not established yet.
	Displayname(ctx context.Context) (string, error)

	// SetDisplayname updates the user's global display name.
	SetDisplayname(ctx context.Context, name string) error
}

// Directory resolves user IDs to intents.
type Directory interface {
	// BotUserID returns the bridge's own primary identity.
	BotUserID() string

	// Domain returns the homeserver domain for synthetic user IDs.
	Domain() string

	// Intent returns an intent for the given user ID.
	Intent(userID string) Intent
}

var localpartStrip = regexp.MustCompile(`[^a-z0-9\-.=_]`)

// SenderLocalpart derives a synthetic user localpart from a connection name:
// lower-cased, restricted to [a-z0-9\-.=_], with "bot" as the fallback when
// nothing survives.
func SenderLocalpart(name string) string {
	localpart := localpartStrip.ReplaceAllString(strings.ToLower(name), "")
	if localpart == "" {
		return "bot"
	}
	return localpart
}

// SenderUserID returns the identity webhook messages are sent as. With no
// configured user ID prefix, that is the bridge bot itself.
func (c *Connection) SenderUserID() string {
	if c.cfg.UserIDPrefix == "" {
		return c.dir.BotUserID()
	}
	return "@" + c.cfg.UserIDPrefix + SenderLocalpart(c.state.Name) + ":" + c.dir.Domain()
}

// expectedDisplayname is what the synthetic sender should be called.
func (c *Connection) expectedDisplayname() string {
	return c.state.Name + " (Webhook)"
}

// ensureDisplayname brings the sender's global display name in line with the
// connection name. Profile lookup failures are treated as "not yet set":
// the ghost is registered, the cache dropped, and delivery continues. The
// name converges on a later webhook.
func (c *Connection) ensureDisplayname(ctx context.Context, intent Intent) {
	expected := c.expectedDisplayname()
	if c.lastDisplayname == expected {
		return
	}

	current, err := intent.Displayname(ctx)
	if err != nil {
		if regErr := intent.EnsureRegistered(ctx); regErr != nil {
			c.logger.Warn("failed to ensure webhook sender is registered",
				"user_id", intent.UserID(), "error", regErr)
		}
		c.lastDisplayname = ""
		return
	}

	if current != expected {
		if err := intent.SetDisplayname(ctx, expected); err != nil {
			c.logger.Warn("failed to set webhook sender display name",
				"user_id", intent.UserID(), "error", err)
			return
		}
	}
	c.lastDisplayname = expected
}
