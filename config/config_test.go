package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppConfig_Sanitize(t *testing.T) {
	t.Run("fills defaults on zero values", func(t *testing.T) {
		cfg := &AppConfig{}
		cfg.Sanitize()

		assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
		assert.Equal(t, DefaultPollInterval, cfg.Tracker.PollInterval)
		assert.Equal(t, DefaultNotFoundGrace, cfg.Tracker.NotFoundGrace)
		assert.Equal(t, DefaultMaxJobAge, cfg.Eviction.MaxJobAge)
		assert.Equal(t, DefaultMaxFinished, cfg.Eviction.MaxFinished)
		assert.Equal(t, int64(DefaultMaxStoreBytes), cfg.Eviction.MaxStoreBytes)
		assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
		assert.Equal(t, AuthModeStatic, cfg.Auth.Mode)
	})

	t.Run("detects dev mode from NODE_ENV", func(t *testing.T) {
		t.Setenv("NODE_ENV", "development")
		cfg := &AppConfig{}
		cfg.Sanitize()
		assert.True(t, cfg.IsDev)
	})

	t.Run("keeps explicit dev flag", func(t *testing.T) {
		cfg := &AppConfig{IsDev: true}
		cfg.Sanitize()
		assert.True(t, cfg.IsDev)
	})
}

func TestChatConfig_Sanitize(t *testing.T) {
	cfg := &ChatConfig{Temperature: 9, MaxTokens: -1, HistorySize: 0}
	cfg.Sanitize()

	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)
}

func TestTrackerConfig_Sanitize(t *testing.T) {
	cfg := &TrackerConfig{PollInterval: -time.Second, NotFoundGrace: -1}
	cfg.Sanitize()

	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultNotFoundGrace, cfg.NotFoundGrace)
}

func TestEvictionConfig_Sanitize(t *testing.T) {
	cfg := &EvictionConfig{MaxJobAge: time.Millisecond, MaxFinished: 0, MaxStoreBytes: 0}
	cfg.Sanitize()

	assert.Equal(t, DefaultMaxJobAge, cfg.MaxJobAge)
	assert.Equal(t, DefaultMaxFinished, cfg.MaxFinished)
	assert.Equal(t, int64(DefaultMaxStoreBytes), cfg.MaxStoreBytes)
}

func TestStoreConfig_Sanitize(t *testing.T) {
	t.Run("normalizes backend casing", func(t *testing.T) {
		cfg := &StoreConfig{Backend: " Postgres "}
		cfg.Sanitize()
		assert.Equal(t, StoreBackendPostgres, cfg.Backend)
	})

	t.Run("unknown backend falls back to redis", func(t *testing.T) {
		cfg := &StoreConfig{Backend: "etcd"}
		cfg.Sanitize()
		assert.Equal(t, StoreBackendRedis, cfg.Backend)
	})
}

func TestAuthConfig_Sanitize(t *testing.T) {
	t.Run("oidc without issuer falls back to static", func(t *testing.T) {
		cfg := &AuthConfig{Mode: "oidc"}
		cfg.Sanitize()
		assert.Equal(t, AuthModeStatic, cfg.Mode)
	})

	t.Run("oidc with issuer is kept", func(t *testing.T) {
		cfg := &AuthConfig{Mode: "OIDC", OIDCIssuer: "https://issuer.example.com"}
		cfg.Sanitize()
		assert.Equal(t, AuthModeOIDC, cfg.Mode)
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
