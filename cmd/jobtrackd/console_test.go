package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/bootstrap"
	"github.com/promptlab/jobtrack/internal/data"
	"github.com/promptlab/jobtrack/internal/mocks"
	"github.com/promptlab/jobtrack/internal/service"
)

func newTestConsole(t *testing.T) (*console, *mocks.MockChatBackend, *service.RegistryService) {
	t.Helper()

	backend := mocks.NewMockChatBackend(gomock.NewController(t))
	store := data.NewMemoryJobStore()

	evictCfg := config.EvictionConfig{}
	evictCfg.Sanitize()
	evict, err := service.NewEvictionService(service.EvictionServiceOptions{
		Store:  store,
		Config: evictCfg,
	})
	require.NoError(t, err)

	registry, err := service.NewRegistryService(service.RegistryServiceOptions{
		Store:    store,
		Backend:  backend,
		Eviction: evict,
	})
	require.NoError(t, err)

	c := newConsole(&bootstrap.App{Registry: registry}, nil)
	c.out = &bytes.Buffer{}
	return c, backend, registry
}

func consoleOutput(c *console) string {
	return c.out.(*bytes.Buffer).String() //nolint:forcetypeassert // test fixture owns the buffer
}

func TestConsole_AnnounceFinished(t *testing.T) {
	ctx := context.Background()

	t.Run("announces each terminal job once", func(t *testing.T) {
		c, backend, registry := newTestConsole(t)

		backend.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return("job-1", nil)
		_, err := registry.Enqueue(ctx, "prompt")
		require.NoError(t, err)

		c.announceFinished()
		assert.Empty(t, consoleOutput(c), "non-terminal jobs are not announced")

		registry.CompleteJob(ctx, registry.Generation(), "job-1", "42")

		c.announceFinished()
		assert.Contains(t, consoleOutput(c), "job job-1 finished: 42")

		before := consoleOutput(c)
		c.announceFinished()
		assert.Equal(t, before, consoleOutput(c), "announcement must not repeat")
	})

	t.Run("announces failures with the error text", func(t *testing.T) {
		c, backend, registry := newTestConsole(t)

		backend.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return("job-1", nil)
		_, err := registry.Enqueue(ctx, "prompt")
		require.NoError(t, err)
		registry.FailJob(ctx, registry.Generation(), "job-1", "boom")

		c.announceFinished()
		assert.Contains(t, consoleOutput(c), "job job-1 failed: boom")
	})

	t.Run("primed jobs are not replayed", func(t *testing.T) {
		c, backend, registry := newTestConsole(t)

		backend.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return("job-1", nil)
		_, err := registry.Enqueue(ctx, "prompt")
		require.NoError(t, err)
		registry.CompleteJob(ctx, registry.Generation(), "job-1", "42")

		c.primeSeen()
		c.announceFinished()
		assert.Empty(t, consoleOutput(c))
	})
}
