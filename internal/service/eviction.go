package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/promptlab/jobtrack/config"
	"github.com/promptlab/jobtrack/internal/core"
	"github.com/promptlab/jobtrack/internal/domain/model"
	"github.com/promptlab/jobtrack/internal/observability/metrics"
	"github.com/promptlab/jobtrack/internal/observability/statsd"
)

// EvictionServiceOptions groups dependencies for EvictionService.
type EvictionServiceOptions struct {
	Store   core.JobStore         // Required: persistent job store
	Config  config.EvictionConfig // Required: eviction bounds
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metrics sink (StatsD-compatible)
}

// EvictionService bounds how much job state one identity keeps.
//
// This service enforces, in order:
// - An age bound: terminal jobs past their retention window are evicted.
// - A count bound: only the newest terminal jobs are retained.
// - A size bound: terminal jobs are evicted oldest-first until the
//   namespace fits its byte budget.
// - An orphan sweep: reply documents with no index entry are deleted.
//
// Jobs that have not reached a terminal status are never evicted.
type EvictionService struct {
	store   core.JobStore
	config  config.EvictionConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewEvictionService constructs a new EvictionService.
func NewEvictionService(opts EvictionServiceOptions) (*EvictionService, error) {
	if opts.Store == nil {
		return nil, errors.New("JobStore is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "eviction_service")
		logger.Debug("EvictionService initialized",
			"max_job_age", opts.Config.MaxJobAge,
			"max_finished", opts.Config.MaxFinished,
			"max_store_bytes", opts.Config.MaxStoreBytes,
		)
	}

	return &EvictionService{
		store:   opts.Store,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// MustNewEvictionService constructs a new EvictionService and wraps any error.
func MustNewEvictionService(opts EvictionServiceOptions) (*EvictionService, error) {
	svc, err := NewEvictionService(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create EvictionService: %w", err)
	}
	return svc, nil
}

// Cleanup applies the eviction policy to idx in place, deleting the reply
// documents of evicted jobs. The caller persists the index afterwards and
// must serialize calls touching the same namespace. Store failures are
// logged and swallowed so a broken store never blocks eviction of the
// in-memory state. Returns the number of evicted jobs.
func (s *EvictionService) Cleanup(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
	now time.Time,
) int {
	start := time.Now()

	aged := s.evictAged(ctx, namespace, idx, now)
	counted := s.evictOverCount(ctx, namespace, idx)
	sized := s.evictOverSize(ctx, namespace, idx)
	orphans := s.sweepOrphans(ctx, namespace, idx)

	total := aged + counted + sized
	if total > 0 || orphans > 0 {
		if s.logger != nil {
			s.logger.InfoContext(ctx, "evicted job state",
				"namespace", namespace,
				"aged", aged,
				"over_count", counted,
				"over_size", sized,
				"orphans", orphans,
			)
		}
	}

	s.emitCleanupMetrics(total, orphans, time.Since(start))
	return total
}

// evictAged removes terminal jobs whose eviction stamp is older than the
// retention window.
func (s *EvictionService) evictAged(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
	now time.Time,
) int {
	cutoff := now.Add(-s.config.MaxJobAge)

	var evicted int
	for id, job := range idx {
		if !job.Status.Terminal() {
			continue
		}
		if job.EvictionStamp().Before(cutoff) {
			s.evictJob(ctx, namespace, idx, id)
			evicted++
		}
	}
	return evicted
}

// evictOverCount keeps only the newest terminal jobs up to the configured
// count, evicting the rest oldest-first.
func (s *EvictionService) evictOverCount(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
) int {
	terminal := terminalOldestFirst(idx)
	excess := len(terminal) - s.config.MaxFinished
	if excess <= 0 {
		return 0
	}

	for _, id := range terminal[:excess] {
		s.evictJob(ctx, namespace, idx, id)
	}
	return excess
}

// evictOverSize evicts terminal jobs oldest-first until the namespace fits
// its byte budget. Usage is re-read after each eviction because reply
// documents vary in size.
func (s *EvictionService) evictOverSize(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
) int {
	used, err := s.store.UsedBytes(ctx, namespace)
	if err != nil {
		s.logStoreError(ctx, "used bytes", namespace, err)
		return 0
	}
	if used <= s.config.MaxStoreBytes {
		return 0
	}

	var evicted int
	for _, id := range terminalOldestFirst(idx) {
		s.evictJob(ctx, namespace, idx, id)
		if err := s.store.SaveIndex(ctx, namespace, idx); err != nil {
			s.logStoreError(ctx, "save index", namespace, err)
		}
		evicted++

		used, err = s.store.UsedBytes(ctx, namespace)
		if err != nil {
			s.logStoreError(ctx, "used bytes", namespace, err)
			break
		}
		if used <= s.config.MaxStoreBytes {
			break
		}
	}
	return evicted
}

// sweepOrphans deletes reply documents that no longer have an index entry.
// They appear when a previous eviction deleted the index entry but the
// reply delete failed.
func (s *EvictionService) sweepOrphans(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
) int {
	ids, err := s.store.ListReplyIDs(ctx, namespace)
	if err != nil {
		s.logStoreError(ctx, "list replies", namespace, err)
		return 0
	}

	var swept int
	for _, id := range ids {
		if _, ok := idx[id]; ok {
			continue
		}
		if err := s.store.DeleteReply(ctx, namespace, id); err != nil {
			s.logStoreError(ctx, "delete reply", namespace, err)
			continue
		}
		swept++
	}
	return swept
}

func (s *EvictionService) evictJob(
	ctx context.Context,
	namespace string,
	idx model.JobIndex,
	id string,
) {
	delete(idx, id)
	if err := s.store.DeleteReply(ctx, namespace, id); err != nil {
		s.logStoreError(ctx, "delete reply", namespace, err)
	}
}

// terminalOldestFirst returns the ids of terminal jobs ordered by eviction
// stamp, oldest first. Ties break on id so the order is deterministic.
func terminalOldestFirst(idx model.JobIndex) []string {
	var ids []string
	for id, job := range idx {
		if job.Status.Terminal() {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool {
		si, sj := idx[ids[i]].EvictionStamp(), idx[ids[j]].EvictionStamp()
		if si.Equal(sj) {
			return ids[i] < ids[j]
		}
		return si.Before(sj)
	})
	return ids
}

func (s *EvictionService) emitCleanupMetrics(evicted, orphans int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultNoop
	if evicted > 0 || orphans > 0 {
		result = metrics.ResultSuccess
	}
	tags := map[string]string{"result": result}

	s.metrics.Count("eviction.cleanup", 1, tags)
	if evicted > 0 {
		s.metrics.Count("eviction.jobs_evicted", int64(evicted), metrics.CloneTags(tags))
	}
	if orphans > 0 {
		s.metrics.Count("eviction.orphans_swept", int64(orphans), metrics.CloneTags(tags))
	}
	if elapsed > 0 {
		s.metrics.Timing("eviction.cleanup_duration", elapsed, metrics.CloneTags(tags))
	}
}

func (s *EvictionService) logStoreError(ctx context.Context, operation, namespace string, err error) {
	if s.logger == nil || isContextCancellation(err) {
		return
	}
	s.logger.WarnContext(ctx, "job store operation failed during eviction",
		"operation", operation,
		"namespace", namespace,
		"error", err,
	)
}
