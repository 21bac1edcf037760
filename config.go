package hookbridge

import "time"

// Config holds the configuration for a Bridge instance.
type Config struct {
	// AllowJSTransformationFunctions enables user-supplied JavaScript
	// transformation functions on connections.
	AllowJSTransformationFunctions bool

	// UserIDPrefix, when set, makes webhook messages arrive from synthetic
	// per-connection users instead of the bridge bot.
	UserIDPrefix string

	// PublicURL is the externally reachable base under which hook URLs are
	// minted, e.g. "https://bridge.example.com".
	PublicURL string

	// ScriptTimeout bounds a single transformation function execution.
	ScriptTimeout time.Duration

	// WebhookRateLimit is the per-hook inbound rate limit in webhooks per
	// second. Zero disables rate limiting.
	WebhookRateLimit int

	// CacheTTL is the TTL for the registry's in-memory connection index.
	// Set to 0 to disable expiry.
	CacheTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AllowJSTransformationFunctions: false,
		ScriptTimeout:                  500 * time.Millisecond,
		WebhookRateLimit:               0,
		CacheTTL:                       30 * time.Second,
	}
}
