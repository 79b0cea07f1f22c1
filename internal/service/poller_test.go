package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/core"
	"github.com/promptlab/jobtrack/internal/domain/model"
	"github.com/promptlab/jobtrack/internal/mocks"
)

type pollerFixture struct {
	*registryFixture
	poller *PollerService
}

func newPollerFixture(t *testing.T) *pollerFixture {
	t.Helper()

	rf := newRegistryFixture(t)

	cfg := config.TrackerConfig{}
	cfg.Sanitize()

	poller, err := NewPollerService(PollerServiceOptions{
		Registry: rf.registry,
		Backend:  rf.backend,
		Config:   cfg,
	})
	require.NoError(t, err)
	poller.now = func() time.Time { return rf.now }

	return &pollerFixture{registryFixture: rf, poller: poller}
}

func strptr(s string) *string { return &s }

func TestNewPollerService(t *testing.T) {
	t.Run("requires registry", func(t *testing.T) {
		_, err := NewPollerService(PollerServiceOptions{Backend: mocks.NewMockChatBackend(gomock.NewController(t))})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RegistryService")
	})

	t.Run("requires backend", func(t *testing.T) {
		f := newRegistryFixture(t)
		_, err := NewPollerService(PollerServiceOptions{Registry: f.registry})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ChatBackend")
	})
}

func TestPollerService_Tick(t *testing.T) {
	ctx := context.Background()

	t.Run("finished job adopts reply", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "finished", Reply: strptr("42")}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusFinished, job.Status)
		require.NotNil(t, job.Reply)
		assert.Equal(t, "42", *job.Reply)
	})

	t.Run("finished without reply gets placeholder", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "finished"}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		require.NotNil(t, job.Reply)
		assert.Equal(t, missingReplyText, *job.Reply)
	})

	t.Run("failed job adopts error text", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "failed", Error: strptr("model exploded")}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusFailed, job.Status)
		require.NotNil(t, job.Error)
		assert.Equal(t, "model exploded", *job.Error)
	})

	t.Run("failed without error gets generic text", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "failed"}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		require.NotNil(t, job.Error)
		assert.Equal(t, genericFailText, *job.Error)
	})

	t.Run("non-terminal status is adopted", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "started"}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusStarted, job.Status)
		require.NotNil(t, job.LastPolledAt)
	})

	t.Run("unknown status is recorded as unknown", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{Status: "defrobulating"}, nil)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusUnknown, job.Status)
	})

	t.Run("terminal jobs are not polled", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")
		f.registry.FailJob(ctx, f.registry.Generation(), "job-1", "boom")

		// No PollJob expectation: the tick has nothing to do.
		require.NoError(t, f.poller.Tick(ctx))
	})

	t.Run("unconfigured backend skips polling", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(false)

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusQueued, job.Status)
	})

	t.Run("busy tick is skipped", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.poller.busy.Store(true)
		require.NoError(t, f.poller.Tick(ctx))
		f.poller.busy.Store(false)

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusQueued, job.Status)
	})
}

func TestPollerService_NotFound(t *testing.T) {
	ctx := context.Background()

	t.Run("within grace window leaves job alone", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{}, core.ErrJobNotFound)

		f.poller.now = func() time.Time { return f.now.Add(2 * time.Second) }
		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusQueued, job.Status)
	})

	t.Run("past grace window fails the job", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{}, core.ErrJobNotFound)

		f.poller.now = func() time.Time { return f.now.Add(6 * time.Second) }
		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusFailed, job.Status)
		require.NotNil(t, job.Error)
		assert.Equal(t, notFoundFailText, *job.Error)
	})
}

func TestPollerService_BackendErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("http error fails the job with the status code", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{}, &core.StatusError{Code: http.StatusServiceUnavailable})

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusFailed, job.Status)
		require.NotNil(t, job.Error)
		assert.Equal(t, "Request failed with HTTP 503", *job.Error)
	})

	t.Run("transport error leaves job untouched", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{}, errors.New("connection refused"))

		require.NoError(t, f.poller.Tick(ctx))

		job, _ := f.registry.Job("job-1")
		assert.Equal(t, model.JobStatusQueued, job.Status)
	})

	t.Run("context cancellation surfaces as canceled", func(t *testing.T) {
		f := newPollerFixture(t)
		f.enqueue(t, "job-1")

		f.backend.EXPECT().Configured().Return(true)
		f.backend.EXPECT().PollJob(gomock.Any(), "job-1").Return(
			core.PollResult{}, context.Canceled)

		err := f.poller.Tick(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}
