package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/promptlab/jobtrack/internal/domain/model"
)

// MemoryJobStore implements core.JobStore with an in-process map. It backs the
// "memory" store backend and the unit tests. Contents do not survive a restart,
// which matches the degraded mode the services fall into when a durable store
// keeps failing.
type MemoryJobStore struct {
	mu   sync.RWMutex
	data map[string][]byte // full key -> encoded document

	// FailWrites and FailReads force errors for testing the callers'
	// degrade-to-memory policy.
	FailWrites bool
	FailReads  bool
}

// NewMemoryJobStore creates an empty MemoryJobStore.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{data: make(map[string][]byte)}
}

var errStoreUnavailable = errors.New("store unavailable")

func memIndexKey(ns string) string        { return ns + ":index" }
func memReplyKey(ns, jobID string) string { return ns + ":reply:" + jobID }

// LoadIndex reads the persisted job index for the namespace.
func (s *MemoryJobStore) LoadIndex(_ context.Context, ns string) (model.JobIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads {
		return model.JobIndex{}, errStoreUnavailable
	}

	data, ok := s.data[memIndexKey(ns)]
	if !ok {
		return model.JobIndex{}, nil
	}
	idx, err := model.DecodeIndex(data)
	if err != nil {
		return model.JobIndex{}, fmt.Errorf("decode index: %w", err)
	}
	return idx, nil
}

// SaveIndex replaces the persisted index for the namespace.
func (s *MemoryJobStore) SaveIndex(_ context.Context, ns string, idx model.JobIndex) error {
	data, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errStoreUnavailable
	}
	s.data[memIndexKey(ns)] = data
	return nil
}

// SaveReply persists the reply document for one job.
func (s *MemoryJobStore) SaveReply(
	_ context.Context,
	ns, jobID string,
	payload model.ReplyPayload,
) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errStoreUnavailable
	}
	s.data[memReplyKey(ns, jobID)] = data
	return nil
}

// LoadReply reads a persisted reply document. Returns (nil, nil) when absent.
func (s *MemoryJobStore) LoadReply(_ context.Context, ns, jobID string) (*model.ReplyPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads {
		return nil, errStoreUnavailable
	}

	data, ok := s.data[memReplyKey(ns, jobID)]
	if !ok {
		return nil, nil
	}
	var payload model.ReplyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return &payload, nil
}

// DeleteReply removes a reply document. Idempotent.
func (s *MemoryJobStore) DeleteReply(_ context.Context, ns, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errStoreUnavailable
	}
	delete(s.data, memReplyKey(ns, jobID))
	return nil
}

// ListReplyIDs returns the job ids with a persisted reply document.
func (s *MemoryJobStore) ListReplyIDs(_ context.Context, ns string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads {
		return nil, errStoreUnavailable
	}

	prefix := ns + ":reply:"
	var ids []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			ids = append(ids, strings.TrimPrefix(key, prefix))
		}
	}
	return ids, nil
}

// UsedBytes sums the encoded size of all documents in the namespace.
func (s *MemoryJobStore) UsedBytes(_ context.Context, ns string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailReads {
		return 0, errStoreUnavailable
	}

	var total int64
	prefix := ns + ":"
	for key, data := range s.data {
		if strings.HasPrefix(key, prefix) {
			total += int64(len(data))
		}
	}
	return total, nil
}

// DeleteAll removes every key in the namespace. Idempotent.
func (s *MemoryJobStore) DeleteAll(_ context.Context, ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errStoreUnavailable
	}

	prefix := ns + ":"
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}

// Keys returns all stored keys, for test assertions.
func (s *MemoryJobStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys
}
