package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/data"
	"github.com/promptlab/jobtrack/internal/mocks"
	"github.com/promptlab/jobtrack/internal/service"
)

func newTestPoller(t *testing.T) *service.PollerService {
	t.Helper()

	ctrl := gomock.NewController(t)
	backend := mocks.NewMockChatBackend(ctrl)
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

	poller, err := service.NewPollerService(service.PollerServiceOptions{
		Registry: registry,
		Backend:  backend,
		Config:   config.TrackerConfig{PollInterval: 10 * time.Millisecond},
	})
	require.NoError(t, err)
	return poller
}

func TestNewRunner(t *testing.T) {
	t.Run("requires poller", func(t *testing.T) {
		_, err := NewRunner(RunnerOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PollerService")
	})

	t.Run("constructs with poller", func(t *testing.T) {
		runner, err := NewRunner(RunnerOptions{Poller: newTestPoller(t)})
		require.NoError(t, err)
		require.NotNil(t, runner)
	})
}

func TestRunner_Run(t *testing.T) {
	t.Run("stops cleanly on cancel", func(t *testing.T) {
		runner, err := NewRunner(RunnerOptions{Poller: newTestPoller(t)})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- runner.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("runner did not stop after cancel")
		}
	})
}
