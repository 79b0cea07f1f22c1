// Package poller provides the adapter that runs the poll loop.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/promptlab/jobtrack/internal/service"
)

// Runner drives the poller service at its configured cadence. Overlap
// prevention lives in the service; the runner only supplies the clock.
type Runner struct {
	poller *service.PollerService
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Poller *service.PollerService // Required: poller service
	Logger *slog.Logger           // Optional: structured logger
}

// NewRunner creates a new poll loop runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Poller == nil {
		return nil, errors.New("PollerService is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Runner{
		poller: opts.Poller,
		logger: opts.Logger,
	}, nil
}

// Run starts the poll loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.poller.Interval()
	r.logger.InfoContext(ctx, "starting poll loop", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "poll loop stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := r.poller.Tick(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				r.logger.ErrorContext(ctx, "poll tick failed", "error", err)
				// Continue running despite errors
			}
		}
	}
}
