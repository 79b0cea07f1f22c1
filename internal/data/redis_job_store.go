package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/promptlab/jobtrack/internal/domain/model"
)

// DefaultKeyPrefix is the root prefix for every key the store writes.
const DefaultKeyPrefix = "jobtrack"

// scanBatchSize is the COUNT hint used for SCAN iterations.
const scanBatchSize = 100

// RedisJobStore implements core.JobStore on top of Redis.
//
// Key layout per namespace ns:
//
//	{prefix}:{ns}:index        the full job index document
//	{prefix}:{ns}:reply:{id}   one reply document per finished job
type RedisJobStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisJobStore creates a RedisJobStore with the default key prefix.
func NewRedisJobStore(client redis.UniversalClient) *RedisJobStore {
	return NewRedisJobStoreWithPrefix(client, DefaultKeyPrefix)
}

// NewRedisJobStoreWithPrefix creates a RedisJobStore with a custom key prefix.
func NewRedisJobStoreWithPrefix(client redis.UniversalClient, prefix string) *RedisJobStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisJobStore{client: client, prefix: prefix}
}

func (s *RedisJobStore) indexKey(ns string) string {
	return s.prefix + ":" + ns + ":index"
}

func (s *RedisJobStore) replyKey(ns, jobID string) string {
	return s.prefix + ":" + ns + ":reply:" + jobID
}

func (s *RedisJobStore) replyPattern(ns string) string {
	return s.prefix + ":" + ns + ":reply:*"
}

// LoadIndex reads the persisted job index for the namespace.
func (s *RedisJobStore) LoadIndex(ctx context.Context, ns string) (model.JobIndex, error) {
	if ns == "" {
		return model.JobIndex{}, errors.New("namespace cannot be empty")
	}

	data, err := s.client.Get(ctx, s.indexKey(ns)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.JobIndex{}, nil
		}
		return model.JobIndex{}, fmt.Errorf("redis get index: %w", err)
	}

	idx, err := model.DecodeIndex([]byte(data))
	if err != nil {
		return model.JobIndex{}, fmt.Errorf("decode index: %w", err)
	}
	return idx, nil
}

// SaveIndex replaces the persisted index for the namespace.
func (s *RedisJobStore) SaveIndex(ctx context.Context, ns string, idx model.JobIndex) error {
	if ns == "" {
		return errors.New("namespace cannot be empty")
	}

	data, err := idx.Encode()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return s.client.Set(ctx, s.indexKey(ns), data, 0).Err()
}

// SaveReply persists the reply document for one job.
func (s *RedisJobStore) SaveReply(
	ctx context.Context,
	ns, jobID string,
	payload model.ReplyPayload,
) error {
	if ns == "" || jobID == "" {
		return errors.New("namespace and job id cannot be empty")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return s.client.Set(ctx, s.replyKey(ns, jobID), data, 0).Err()
}

// LoadReply reads a persisted reply document. Returns (nil, nil) when absent.
func (s *RedisJobStore) LoadReply(ctx context.Context, ns, jobID string) (*model.ReplyPayload, error) {
	if ns == "" || jobID == "" {
		return nil, errors.New("namespace and job id cannot be empty")
	}

	data, err := s.client.Get(ctx, s.replyKey(ns, jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get reply: %w", err)
	}

	var payload model.ReplyPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return &payload, nil
}

// DeleteReply removes a reply document. Deleting a missing key is a no-op.
func (s *RedisJobStore) DeleteReply(ctx context.Context, ns, jobID string) error {
	if ns == "" || jobID == "" {
		return nil
	}
	return s.client.Del(ctx, s.replyKey(ns, jobID)).Err()
}

// ListReplyIDs returns the job ids with a persisted reply document.
func (s *RedisJobStore) ListReplyIDs(ctx context.Context, ns string) ([]string, error) {
	keys, err := s.scanKeys(ctx, s.replyPattern(ns))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	replyPrefix := s.prefix + ":" + ns + ":reply:"
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, replyPrefix))
	}
	return ids, nil
}

// UsedBytes sums the encoded size of the index and every reply document.
func (s *RedisJobStore) UsedBytes(ctx context.Context, ns string) (int64, error) {
	var total int64

	size, err := s.client.StrLen(ctx, s.indexKey(ns)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("redis strlen index: %w", err)
	}
	total += size

	keys, err := s.scanKeys(ctx, s.replyPattern(ns))
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		size, err := s.client.StrLen(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("redis strlen %s: %w", key, err)
		}
		total += size
	}

	return total, nil
}

// DeleteAll removes every key in the namespace.
func (s *RedisJobStore) DeleteAll(ctx context.Context, ns string) error {
	if ns == "" {
		return nil
	}

	keys, err := s.scanKeys(ctx, s.prefix+":"+ns+":*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// scanKeys collects all keys matching the pattern using SCAN, which avoids
// blocking the server the way KEYS would.
func (s *RedisJobStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// Health checks the Redis connection.
func (s *RedisJobStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
