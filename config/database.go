package config

import (
	"fmt"
	"strings"
)

// Store backend names accepted by StoreConfig.Backend.
const (
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// StoreConfig selects the persistent job store backend.
type StoreConfig struct {
	// Backend is one of "redis", "postgres", or "memory".
	Backend string `env:"STORE_BACKEND" envDefault:"redis"`

	// KeyPrefix namespaces every key the Redis backend writes.
	KeyPrefix string `env:"STORE_KEY_PREFIX" envDefault:"jobtrack"`
}

// Sanitize applies guardrails to store configuration.
func (c *StoreConfig) Sanitize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case StoreBackendRedis, StoreBackendPostgres, StoreBackendMemory:
	default:
		c.Backend = StoreBackendRedis
	}
	if strings.TrimSpace(c.KeyPrefix) == "" {
		c.KeyPrefix = "jobtrack"
	}
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Addr returns the host:port address for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"jobtrack"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"jobtrack"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN returns the connection string for the pgx stdlib driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
