package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/jobtrack/config"
)

func memoryAppConfig() config.AppConfig {
	cfg := config.AppConfig{}
	cfg.Sanitize()
	cfg.Store.Backend = config.StoreBackendMemory
	return cfg
}

func TestNewApp_MemoryBackend(t *testing.T) {
	app, err := NewApp(context.Background(), memoryAppConfig(), InitLogger(false))
	require.NoError(t, err)

	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Backend)
	assert.NotNil(t, app.Registry)
	assert.NotNil(t, app.Poller)
	assert.NotNil(t, app.Session)
	assert.NotNil(t, app.Identity)
	assert.NotNil(t, app.Runner)

	require.NoError(t, app.Close())
}

func TestNewApp_UnknownBackend(t *testing.T) {
	cfg := memoryAppConfig()
	cfg.Store.Backend = "etcd"

	_, err := NewApp(context.Background(), cfg, InitLogger(false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
