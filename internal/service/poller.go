package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/core"
	"github.com/promptlab/jobtrack/internal/domain/model"
	"github.com/promptlab/jobtrack/internal/observability/metrics"
	"github.com/promptlab/jobtrack/internal/observability/statsd"
)

// Fallback texts used when the backend reports a terminal status without the
// accompanying payload.
const (
	missingReplyText = "No reply received."
	genericFailText  = "Job failed"
	notFoundFailText = "Job not found"
)

// maxConcurrentPolls caps the status requests issued per tick.
const maxConcurrentPolls = 4

// PollerServiceOptions groups dependencies for PollerService.
type PollerServiceOptions struct {
	Registry *RegistryService     // Required: job registry
	Backend  core.ChatBackend     // Required: remote reasoning backend
	Config   config.TrackerConfig // Required: cadence and grace settings
	Logger   *slog.Logger         // Optional: structured logger
	Metrics  statsd.Sink          // Optional: metrics sink (StatsD-compatible)
}

// PollerService polls the backend for the status of active jobs and feeds
// the results back into the registry.
//
// Ticks never overlap: a tick arriving while the previous one is still in
// flight is skipped, so a slow backend stretches the effective cadence
// instead of stacking requests. Each tick captures the registry generation
// first; the registry drops results that arrive after a reload or teardown.
type PollerService struct {
	registry *RegistryService
	backend  core.ChatBackend
	config   config.TrackerConfig
	logger   *slog.Logger
	metrics  statsd.Sink

	busy atomic.Bool
	now  func() time.Time
}

// NewPollerService constructs a new PollerService.
func NewPollerService(opts PollerServiceOptions) (*PollerService, error) {
	if opts.Registry == nil {
		return nil, errors.New("RegistryService is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("ChatBackend is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "poller_service")
		logger.Debug("PollerService initialized",
			"poll_interval", opts.Config.PollInterval,
			"not_found_grace", opts.Config.NotFoundGrace,
		)
	}

	return &PollerService{
		registry: opts.Registry,
		backend:  opts.Backend,
		config:   opts.Config,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      time.Now,
	}, nil
}

// MustNewPollerService constructs a new PollerService and wraps any error.
func MustNewPollerService(opts PollerServiceOptions) (*PollerService, error) {
	svc, err := NewPollerService(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create PollerService: %w", err)
	}
	return svc, nil
}

// Interval returns the configured poll cadence.
func (s *PollerService) Interval() time.Duration {
	return s.config.PollInterval
}

// Tick polls every active job once. It returns immediately when a previous
// tick is still running or when the backend is not configured.
func (s *PollerService) Tick(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		if s.logger != nil {
			s.logger.DebugContext(ctx, "previous tick still in flight, skipping")
		}
		s.emitTick(metrics.ResultNoop, 0, 0)
		return nil
	}
	defer s.busy.Store(false)

	active := s.registry.ActiveJobs()
	if len(active) == 0 {
		s.emitTick(metrics.ResultNoop, 0, 0)
		return nil
	}

	if !s.backend.Configured() {
		s.emitTick(metrics.ResultNoop, 0, 0)
		return nil
	}

	start := time.Now()
	gen := s.registry.Generation()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentPolls)
	for _, job := range active {
		job := job
		group.Go(func() error {
			return s.pollOne(groupCtx, gen, job)
		})
	}

	err := group.Wait()
	elapsed := time.Since(start)

	switch {
	case isContextCancellation(err):
		s.emitTick(metrics.ResultNoop, len(active), elapsed)
		return context.Canceled
	case err != nil:
		s.emitTick(metrics.ResultError, len(active), elapsed)
		return fmt.Errorf("poll tick: %w", err)
	default:
		s.emitTick(metrics.ResultSuccess, len(active), elapsed)
		return nil
	}
}

// pollOne queries one job and applies the outcome to the registry. Backend
// unavailability is not an error for the tick as a whole: the job is left
// untouched and retried on the next tick.
func (s *PollerService) pollOne(ctx context.Context, gen uint64, job *model.Job) error {
	result, err := s.backend.PollJob(ctx, job.ID)
	if err != nil {
		return s.handlePollError(ctx, gen, job, err)
	}

	switch model.ParseStatus(result.Status) {
	case model.JobStatusFinished:
		reply := missingReplyText
		if result.Reply != nil && *result.Reply != "" {
			reply = *result.Reply
		}
		s.registry.CompleteJob(ctx, gen, job.ID, reply)

	case model.JobStatusFailed:
		message := genericFailText
		if result.Error != nil && *result.Error != "" {
			message = *result.Error
		}
		s.registry.FailJob(ctx, gen, job.ID, message)

	default:
		s.registry.UpdateJobStatus(ctx, gen, job.ID, result.Status)
	}

	return nil
}

// handlePollError decides what a poll failure means for the job.
//
// A 404 shortly after enqueue is expected: the backend may not have
// registered the job yet, so the job is left alone until the grace window
// passes. A 404 after the window means the job is gone and is marked
// failed, as is any other non-success HTTP status. Transport errors leave
// the job untouched for the next tick.
func (s *PollerService) handlePollError(
	ctx context.Context,
	gen uint64,
	job *model.Job,
	err error,
) error {
	if isContextCancellation(err) {
		return err
	}

	if errors.Is(err, core.ErrJobNotFound) {
		if s.now().Sub(job.EnqueuedAt) <= s.config.NotFoundGrace {
			return nil
		}
		s.registry.FailJob(ctx, gen, job.ID, notFoundFailText)
		return nil
	}

	var statusErr *core.StatusError
	if errors.As(err, &statusErr) {
		s.registry.FailJob(ctx, gen, job.ID,
			fmt.Sprintf("Request failed with HTTP %d", statusErr.Code))
		return nil
	}

	if s.logger != nil {
		s.logger.WarnContext(ctx, "poll failed, will retry",
			"job_id", job.ID,
			"error", err,
		)
	}
	if s.metrics != nil {
		s.metrics.Count("poller.poll_error", 1, map[string]string{
			"result": metrics.ResultError,
		})
	}
	return nil
}

func (s *PollerService) emitTick(result string, polled int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	tags := map[string]string{"result": result}
	s.metrics.Count("poller.tick", 1, tags)
	if polled > 0 {
		s.metrics.Gauge("poller.active_jobs", float64(polled), metrics.CloneTags(tags))
	}
	if elapsed > 0 {
		s.metrics.Timing("poller.tick_duration", elapsed, metrics.CloneTags(tags))
	}
}
