package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptlab/jobtrack/internal/domain/model"
)

// This file contains the interface definitions (ports in hexagonal architecture)
// between the service layer and the data / transport layers. Service
// implementations should depend on these interfaces, not concrete types.

// JobStore defines the persistent key/value storage for a job namespace.
// Every namespace holds one index document (the full job map) plus one reply
// document per finished job. Implementations return errors; the service layer
// owns the policy of swallowing them and degrading to memory-only tracking.
type JobStore interface {
	// LoadIndex reads the persisted job index for the namespace. A missing
	// index yields an empty map; a corrupt index yields an empty map and an
	// error so callers can fall back to a clean state.
	LoadIndex(ctx context.Context, namespace string) (model.JobIndex, error)
	// SaveIndex replaces the persisted index for the namespace.
	SaveIndex(ctx context.Context, namespace string, idx model.JobIndex) error
	// SaveReply persists the reply document for one job.
	SaveReply(ctx context.Context, namespace, jobID string, payload model.ReplyPayload) error
	// LoadReply reads a persisted reply document. Returns (nil, nil) when absent.
	LoadReply(ctx context.Context, namespace, jobID string) (*model.ReplyPayload, error)
	// DeleteReply removes a reply document. Idempotent.
	DeleteReply(ctx context.Context, namespace, jobID string) error
	// ListReplyIDs returns the job ids that currently have a persisted reply
	// document, for the orphan sweep.
	ListReplyIDs(ctx context.Context, namespace string) ([]string, error)
	// UsedBytes returns the approximate encoded size of the index plus all
	// reply documents in the namespace.
	UsedBytes(ctx context.Context, namespace string) (int64, error)
	// DeleteAll removes every key in the namespace. Idempotent.
	DeleteAll(ctx context.Context, namespace string) error
}

// ChatBackend defines the remote reasoning service the client talks to.
type ChatBackend interface {
	// Enqueue submits a message for out-of-band processing and returns the
	// backend-assigned job id.
	Enqueue(ctx context.Context, message string) (string, error)
	// PollJob queries the status of one job. A 404 from the backend is
	// reported as ErrJobNotFound; other non-success statuses as *StatusError.
	PollJob(ctx context.Context, jobID string) (PollResult, error)
	// Configured reports whether the backend endpoint is set. The poller
	// skips cycles entirely against an unconfigured backend.
	Configured() bool
}

// PollResult is the interpreted body of a successful status query.
type PollResult struct {
	// Status is the raw backend-reported status string.
	Status string
	// Reply holds the extracted reply payload when the backend reported one.
	Reply *string
	// Error holds the backend-reported error text when present.
	Error *string
}

// ErrJobNotFound is returned by ChatBackend.PollJob when the backend does not
// know the job id (HTTP 404). Within the enqueue grace window this is treated
// as "not yet visible"; past it the job is failed.
var ErrJobNotFound = errors.New("job not found")

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d", e.Code)
}
