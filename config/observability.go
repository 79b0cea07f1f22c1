package config

import "strings"

// ObservabilityConfig controls metrics emission.
type ObservabilityConfig struct {
	// StatsdAddr is the host:port of a statsd collector. Empty disables
	// metrics emission.
	StatsdAddr string `env:"STATSD_ADDR"`

	// MetricPrefix is prepended to every metric name.
	MetricPrefix string `env:"METRIC_PREFIX" envDefault:"jobtrack"`
}

// Sanitize applies guardrails to observability configuration.
func (c *ObservabilityConfig) Sanitize() {
	c.StatsdAddr = strings.TrimSpace(c.StatsdAddr)
	if strings.TrimSpace(c.MetricPrefix) == "" {
		c.MetricPrefix = "jobtrack"
	}
}

// Enabled reports whether metrics should be emitted.
func (c ObservabilityConfig) Enabled() bool {
	return c.StatsdAddr != ""
}
