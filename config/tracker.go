package config

import "time"

// Tracker timing defaults.
const (
	DefaultPollInterval  = time.Second
	DefaultNotFoundGrace = 5 * time.Second
)

// Eviction bound defaults applied to each identity's persisted job state.
const (
	DefaultMaxJobAge      = 10 * time.Minute
	DefaultMaxFinished    = 10
	DefaultMaxStoreBytes  = 2 * 1024 * 1024
	minEvictionResolution = time.Second
)

// TrackerConfig holds poller cadence settings.
type TrackerConfig struct {
	// PollInterval is how often active jobs are polled.
	PollInterval time.Duration `env:"TRACKER_POLL_INTERVAL" envDefault:"1s"`

	// NotFoundGrace is how long after enqueue a 404 from the backend is
	// tolerated before the job is marked failed. Freshly enqueued jobs may
	// not be visible to the poll endpoint yet.
	NotFoundGrace time.Duration `env:"TRACKER_NOT_FOUND_GRACE" envDefault:"5s"`
}

// Sanitize applies guardrails to tracker configuration.
func (c *TrackerConfig) Sanitize() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.NotFoundGrace <= 0 {
		c.NotFoundGrace = DefaultNotFoundGrace
	}
}

// EvictionConfig bounds how much terminal job state one identity may keep.
type EvictionConfig struct {
	// MaxJobAge is how long a terminal job is retained.
	MaxJobAge time.Duration `env:"EVICTION_MAX_JOB_AGE" envDefault:"10m"`

	// MaxFinished caps how many terminal jobs are retained.
	MaxFinished int `env:"EVICTION_MAX_FINISHED" envDefault:"10"`

	// MaxStoreBytes caps the total bytes one identity's job state may
	// occupy in the store.
	MaxStoreBytes int64 `env:"EVICTION_MAX_STORE_BYTES" envDefault:"2097152"`
}

// Sanitize applies guardrails to eviction configuration.
func (c *EvictionConfig) Sanitize() {
	if c.MaxJobAge < minEvictionResolution {
		c.MaxJobAge = DefaultMaxJobAge
	}
	if c.MaxFinished <= 0 {
		c.MaxFinished = DefaultMaxFinished
	}
	if c.MaxStoreBytes <= 0 {
		c.MaxStoreBytes = DefaultMaxStoreBytes
	}
}
