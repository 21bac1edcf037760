package extension

import (
	"time"

	"github.com/xraph/hookbridge"
)

// Config holds configuration for the Hookbridge Forge extension.
// Fields can be set programmatically via ExtOption functions or loaded from
// YAML configuration files (under "extensions.hookbridge" or "hookbridge" keys).
type Config struct {
	// Config embeds the core bridge configuration.
	hookbridge.Config `json:",inline" yaml:",inline" mapstructure:",squash"`

	// BasePath is the URL prefix for all bridge routes (default: "/hookbridge").
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// DisableRoutes disables automatic route registration with the Forge router.
	DisableRoutes bool `json:"disable_routes" yaml:"disable_routes" mapstructure:"disable_routes"`

	// DisableMigrate disables automatic database migration on Register.
	DisableMigrate bool `json:"disable_migrate" yaml:"disable_migrate" mapstructure:"disable_migrate"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the sqlite store. When empty and WithGroveDatabase was called, the
	// default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// GroveKV is the name of a grove kv.Store registered in the DI container.
	// When set, the extension resolves this named KV store and auto-constructs
	// a Redis-backed store. When empty and WithGroveKV was called, the default
	// (unnamed) kv.Store is used.
	GroveKV string `json:"grove_kv" mapstructure:"grove_kv" yaml:"grove_kv"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Config:   hookbridge.DefaultConfig(),
		BasePath: "/hookbridge",
	}
}

// ToBridgeOptions converts the embedded Config into hookbridge.Option values.
func (c Config) ToBridgeOptions() []hookbridge.Option {
	var opts []hookbridge.Option

	if c.AllowJSTransformationFunctions {
		opts = append(opts, hookbridge.WithJSTransformationFunctions(true))
	}
	if c.UserIDPrefix != "" {
		opts = append(opts, hookbridge.WithUserIDPrefix(c.UserIDPrefix))
	}
	if c.PublicURL != "" {
		opts = append(opts, hookbridge.WithPublicURL(c.PublicURL))
	}
	if c.ScriptTimeout > 0 {
		opts = append(opts, hookbridge.WithScriptTimeout(c.ScriptTimeout))
	}
	if c.WebhookRateLimit > 0 {
		opts = append(opts, hookbridge.WithWebhookRateLimit(c.WebhookRateLimit))
	}
	if c.CacheTTL > time.Duration(0) {
		opts = append(opts, hookbridge.WithCacheTTL(c.CacheTTL))
	}

	return opts
}
