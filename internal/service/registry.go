package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/promptlab/jobtrack/internal/core"
	"github.com/promptlab/jobtrack/internal/domain/auth"
	"github.com/promptlab/jobtrack/internal/domain/model"
	obserrors "github.com/promptlab/jobtrack/internal/observability/errors"
	"github.com/promptlab/jobtrack/internal/observability/metrics"
	"github.com/promptlab/jobtrack/internal/observability/statsd"
)

// RegistryServiceOptions groups dependencies for RegistryService.
type RegistryServiceOptions struct {
	Store    core.JobStore    // Required: persistent job store
	Backend  core.ChatBackend // Required: remote reasoning backend
	Eviction *EvictionService // Required: eviction policy
	Logger   *slog.Logger     // Optional: structured logger
	Metrics  statsd.Sink      // Optional: metrics sink (StatsD-compatible)
}

// RegistryService is the in-memory registry of tracked jobs for the active
// identity, backed by the persistent store.
//
// The registry is the single writer of job state. All mutations happen under
// its lock, and every mutation is persisted to the store. Store failures are
// logged and swallowed: the registry keeps serving from memory so a broken
// store degrades durability, never availability.
//
// The generation counter fences asynchronous updates. Reload and Teardown
// bump it, so a poll result computed against an earlier registry state is
// discarded instead of resurrecting jobs that belong to a previous identity.
type RegistryService struct {
	store   core.JobStore
	backend core.ChatBackend
	evict   *EvictionService
	logger  *slog.Logger
	metrics statsd.Sink

	mu         sync.Mutex
	namespace  string
	jobs       model.JobIndex
	generation uint64

	now func() time.Time
}

// NewRegistryService constructs a new RegistryService. The registry starts
// empty in the anonymous namespace; call Reload to hydrate from the store.
func NewRegistryService(opts RegistryServiceOptions) (*RegistryService, error) {
	if opts.Store == nil {
		return nil, errors.New("JobStore is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("ChatBackend is required")
	}
	if opts.Eviction == nil {
		return nil, errors.New("EvictionService is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "registry_service")
	}

	return &RegistryService{
		store:     opts.Store,
		backend:   opts.Backend,
		evict:     opts.Eviction,
		logger:    logger,
		metrics:   opts.Metrics,
		namespace: auth.AnonymousNamespace,
		jobs:      model.JobIndex{},
		now:       time.Now,
	}, nil
}

// MustNewRegistryService constructs a new RegistryService and wraps any error.
func MustNewRegistryService(opts RegistryServiceOptions) (*RegistryService, error) {
	svc, err := NewRegistryService(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create RegistryService: %w", err)
	}
	return svc, nil
}

// Namespace returns the namespace the registry currently serves.
func (s *RegistryService) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namespace
}

// Generation returns the current generation. Callers that compute results
// asynchronously capture it first and pass it back with the update, which is
// dropped if the registry has been reloaded or torn down in between.
func (s *RegistryService) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Reload replaces the registry contents with the persisted state of the
// given namespace. A load failure yields an empty registry, never an error:
// the store may be down while the backend is fine.
func (s *RegistryService) Reload(ctx context.Context, namespace string) {
	idx, err := s.store.LoadIndex(ctx, namespace)
	if err != nil {
		s.logStoreError(ctx, "load index", namespace, err)
		idx = model.JobIndex{}
	}

	s.mu.Lock()
	s.namespace = namespace
	s.jobs = idx
	s.generation++
	evicted := s.cleanupLocked(ctx)
	if evicted > 0 {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.InfoContext(ctx, "registry reloaded",
			"namespace", namespace,
			"jobs", len(idx),
			"evicted", evicted,
		)
	}
	s.count("registry.reload", map[string]string{"result": metrics.ResultSuccess})
}

// Teardown empties the registry without touching the store and bumps the
// generation so in-flight poll results are discarded.
func (s *RegistryService) Teardown() {
	s.mu.Lock()
	s.namespace = auth.AnonymousNamespace
	s.jobs = model.JobIndex{}
	s.generation++
	s.mu.Unlock()
}

// Enqueue submits a prompt to the backend and begins tracking the returned
// job. The job is persisted before Enqueue returns.
func (s *RegistryService) Enqueue(ctx context.Context, message string) (*model.Job, error) {
	jobID, err := s.backend.Enqueue(ctx, message)
	if err != nil {
		s.count("registry.enqueue", map[string]string{"result": metrics.ResultError})
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.mu.Lock()
	job := model.NewJob(jobID, s.now())
	s.jobs[jobID] = job
	s.cleanupLocked(ctx)
	s.persistLocked(ctx)
	clone := job.Clone()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job enqueued", "job_id", jobID)
	}
	s.count("registry.enqueue", map[string]string{"result": metrics.ResultSuccess})
	return clone, nil
}

// Job returns a copy of one tracked job.
func (s *RegistryService) Job(id string) (*model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Jobs returns a copy of every tracked job.
func (s *RegistryService) Jobs() model.JobIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Clone()
}

// ActiveJobs returns copies of the jobs still awaiting a terminal status.
func (s *RegistryService) ActiveJobs() []*model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*model.Job
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			active = append(active, job.Clone())
		}
	}
	return active
}

// ClearJob stops tracking one job and deletes its persisted state. Clearing
// an unknown job is a no-op.
func (s *RegistryService) ClearJob(ctx context.Context, id string) {
	s.mu.Lock()
	_, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
		if err := s.store.DeleteReply(ctx, s.namespace, id); err != nil {
			s.logStoreError(ctx, "delete reply", s.namespace, err)
		}
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	result := metrics.ResultNoop
	if ok {
		result = metrics.ResultSuccess
	}
	s.count("registry.clear_job", map[string]string{"result": result})
}

// ClearAll stops tracking every job and purges the namespace from the store.
func (s *RegistryService) ClearAll(ctx context.Context) {
	s.mu.Lock()
	s.jobs = model.JobIndex{}
	if err := s.store.DeleteAll(ctx, s.namespace); err != nil {
		s.logStoreError(ctx, "delete all", s.namespace, err)
	}
	s.mu.Unlock()

	s.count("registry.clear_all", map[string]string{"result": metrics.ResultSuccess})
}

// Reply loads the persisted reply document for a job, if any.
func (s *RegistryService) Reply(ctx context.Context, id string) (*model.ReplyPayload, error) {
	s.mu.Lock()
	namespace := s.namespace
	s.mu.Unlock()

	return s.store.LoadReply(ctx, namespace, id)
}

// CompleteJob marks a job finished with the given reply. The update is
// dropped when gen no longer matches or when the job is already terminal.
func (s *RegistryService) CompleteJob(ctx context.Context, gen uint64, id, reply string) {
	s.applyPoll(ctx, gen, id, "complete", func(job *model.Job) bool {
		if !job.MarkFinished(reply, s.now()) {
			return false
		}
		if err := s.store.SaveReply(ctx, s.namespace, id, model.ReplyPayload{Reply: reply}); err != nil {
			s.logStoreError(ctx, "save reply", s.namespace, err)
		}
		return true
	})
}

// FailJob marks a job failed with the given message, subject to the same
// generation and terminal-state guards as CompleteJob.
func (s *RegistryService) FailJob(ctx context.Context, gen uint64, id, message string) {
	s.applyPoll(ctx, gen, id, "fail", func(job *model.Job) bool {
		return job.MarkFailed(message, s.now())
	})
}

// UpdateJobStatus records a non-terminal status reported by the backend and
// stamps the poll time. Terminal statuses must go through CompleteJob or
// FailJob so replies and error text are handled.
func (s *RegistryService) UpdateJobStatus(ctx context.Context, gen uint64, id, rawStatus string) {
	s.applyPoll(ctx, gen, id, "update_status", func(job *model.Job) bool {
		return job.AdoptStatus(rawStatus, s.now())
	})
}

// applyPoll runs a guarded mutation of one job and persists on change.
func (s *RegistryService) applyPoll(
	ctx context.Context,
	gen uint64,
	id, operation string,
	mutate func(*model.Job) bool,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := map[string]string{"operation": operation}

	if gen != s.generation {
		tags["result"] = "stale"
		s.count("registry.poll_update", tags)
		return
	}

	job, ok := s.jobs[id]
	if !ok {
		tags["result"] = metrics.ResultNoop
		s.count("registry.poll_update", tags)
		return
	}

	if !mutate(job) {
		tags["result"] = metrics.ResultNoop
		s.count("registry.poll_update", tags)
		return
	}

	if job.Status.Terminal() {
		s.cleanupLocked(ctx)
	}
	s.persistLocked(ctx)

	tags["result"] = metrics.ResultSuccess
	s.count("registry.poll_update", tags)
}

// cleanupLocked applies the eviction policy to the in-memory index and the
// store. Caller must hold s.mu. Returns the number of evicted jobs.
func (s *RegistryService) cleanupLocked(ctx context.Context) int {
	return s.evict.Cleanup(ctx, s.namespace, s.jobs, s.now())
}

// persistLocked writes the index to the store, logging and swallowing any
// failure. Caller must hold s.mu.
func (s *RegistryService) persistLocked(ctx context.Context) {
	if err := s.store.SaveIndex(ctx, s.namespace, s.jobs); err != nil {
		s.logStoreError(ctx, "save index", s.namespace, err)
	}
}

func (s *RegistryService) logStoreError(ctx context.Context, operation, namespace string, err error) {
	if s.logger != nil && !isContextCancellation(err) {
		s.logger.WarnContext(ctx, "job store operation failed",
			"operation", operation,
			"namespace", namespace,
			"error", err,
		)
	}

	tags := map[string]string{"operation": operation}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
	s.count("registry.store_error", tags)
}

func (s *RegistryService) count(name string, tags map[string]string) {
	if s.metrics != nil {
		s.metrics.Count(name, 1, tags)
	}
}
