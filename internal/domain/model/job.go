// Package model defines the core data types for the jobtrack client.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of a reasoning job.
type JobStatus string

const (
	// JobStatusQueued indicates the backend accepted the job but has not started it.
	JobStatusQueued JobStatus = "queued"
	// JobStatusStarted indicates the backend is processing the job.
	JobStatusStarted JobStatus = "started"
	// JobStatusFinished indicates the job completed and a reply is available.
	JobStatusFinished JobStatus = "finished"
	// JobStatusFailed indicates the job failed; Error carries the reason.
	JobStatusFailed JobStatus = "failed"
	// JobStatusUnknown is recorded when the backend reports a status this client
	// does not recognize. Treated as non-terminal and polled again.
	JobStatusUnknown JobStatus = "unknown"
)

// Valid returns true if the JobStatus is one of the known values.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusStarted || s == JobStatusFinished ||
		s == JobStatusFailed || s == JobStatusUnknown
}

// Terminal returns true when no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// ParseStatus normalizes a backend-reported status string. Empty input maps to
// started (the backend picked the job up but reported nothing useful), any
// unrecognized value maps to unknown.
func ParseStatus(raw string) JobStatus {
	v := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return JobStatusStarted
	}
	if v.Valid() {
		return v
	}
	return JobStatusUnknown
}

// Job represents one asynchronous reasoning request and its lifecycle state.
// The backend assigns the ID at enqueue time; it never changes afterwards.
type Job struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	Reply        *string    `json:"reply,omitempty"`
	Error        *string    `json:"error,omitempty"`
	EnqueuedAt   time.Time  `json:"enqueued_at"`
	LastPolledAt *time.Time `json:"last_polled_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a freshly enqueued job.
func NewJob(id string, now time.Time) *Job {
	return &Job{
		ID:         id,
		Status:     JobStatusQueued,
		EnqueuedAt: now,
	}
}

// Terminal reports whether the job reached a terminal state.
func (j *Job) Terminal() bool {
	return j.Status.Terminal()
}

// MarkFinished transitions the job to finished with the given reply.
// No-op when the job is already terminal. FinishedAt is set exactly once.
func (j *Job) MarkFinished(reply string, now time.Time) bool {
	if j.Terminal() {
		return false
	}
	j.Status = JobStatusFinished
	j.Reply = &reply
	j.Error = nil
	j.touchFinished(now)
	return true
}

// MarkFailed transitions the job to failed with the given error message.
// No-op when the job is already terminal. FinishedAt is set exactly once.
func (j *Job) MarkFailed(msg string, now time.Time) bool {
	if j.Terminal() {
		return false
	}
	j.Status = JobStatusFailed
	j.Error = &msg
	j.Reply = nil
	j.touchFinished(now)
	return true
}

// AdoptStatus records a non-terminal backend-reported status and advances
// LastPolledAt. No-op when the job is already terminal or when the parsed
// status would be terminal (terminal transitions go through MarkFinished /
// MarkFailed so reply and error handling stay in one place).
func (j *Job) AdoptStatus(raw string, now time.Time) bool {
	if j.Terminal() {
		return false
	}
	status := ParseStatus(raw)
	if status.Terminal() {
		return false
	}
	j.Status = status
	t := now
	j.LastPolledAt = &t
	return true
}

func (j *Job) touchFinished(now time.Time) {
	t := now
	j.LastPolledAt = &t
	if j.FinishedAt == nil {
		j.FinishedAt = &t
	}
}

// EvictionStamp returns the timestamp used for eviction ordering: FinishedAt
// when set, else LastPolledAt, else EnqueuedAt.
func (j *Job) EvictionStamp() time.Time {
	if j.FinishedAt != nil {
		return *j.FinishedAt
	}
	if j.LastPolledAt != nil {
		return *j.LastPolledAt
	}
	return j.EnqueuedAt
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	cp := *j
	cp.Reply = clonePtr(j.Reply)
	cp.Error = clonePtr(j.Error)
	cp.LastPolledAt = clonePtr(j.LastPolledAt)
	cp.FinishedAt = clonePtr(j.FinishedAt)
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// JobIndex is the full job map persisted as one document per namespace.
// The persisted index is the authoritative serialization of the in-memory
// registry for its namespace.
type JobIndex map[string]*Job

// Clone returns a deep copy of the index.
func (idx JobIndex) Clone() JobIndex {
	out := make(JobIndex, len(idx))
	for id, job := range idx {
		out[id] = job.Clone()
	}
	return out
}

// Encode serializes the index for persistence.
func (idx JobIndex) Encode() ([]byte, error) {
	return json.Marshal(idx)
}

// DecodeIndex deserializes a persisted index. Empty input yields an empty
// index; corrupt input yields an empty index and the decode error so callers
// can fall back to a clean state.
func DecodeIndex(data []byte) (JobIndex, error) {
	if len(data) == 0 {
		return JobIndex{}, nil
	}
	var idx JobIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return JobIndex{}, err
	}
	if idx == nil {
		idx = JobIndex{}
	}
	return idx, nil
}

// ReplyPayload is the per-job reply document persisted alongside the index.
type ReplyPayload struct {
	Reply string `json:"reply"`
}
