// Package config defines the application configuration, loaded from
// environment variables via github.com/caarlos0/env.
package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files:
//   - chat.go: remote reasoning/chat service endpoints
//   - tracker.go: poller cadence and eviction bounds
//   - database.go: persistent store backends (Redis/Postgres)
//   - auth.go: identity provider configuration
//   - observability.go: metrics emission
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Chat holds the remote service endpoints and credentials.
	Chat ChatConfig

	// Tracker holds poller cadence and grace-window settings.
	Tracker TrackerConfig

	// Eviction holds the bounds applied to persisted job state.
	Eviction EvictionConfig

	// Store selects and configures the persistent job store backend.
	Store    StoreConfig
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Postgres DBConfig    `envPrefix:"DB_"`

	// Auth selects and configures the identity provider.
	Auth AuthConfig

	// Observability controls metrics emission.
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Chat.Sanitize()
	c.Tracker.Sanitize()
	c.Eviction.Sanitize()
	c.Store.Sanitize()
	c.Auth.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode also honors NODE_ENV=development so the tracker picks up
// dev mode when run alongside web tooling that sets it.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
