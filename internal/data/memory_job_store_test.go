package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/jobtrack/internal/domain/model"
)

func TestMemoryJobStore_IndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("missing index loads empty", func(t *testing.T) {
		idx, err := store.LoadIndex(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, idx)
	})

	t.Run("save and load", func(t *testing.T) {
		idx := model.JobIndex{"abc": model.NewJob("abc", now)}
		require.NoError(t, store.SaveIndex(ctx, "alice", idx))

		loaded, err := store.LoadIndex(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, model.JobStatusQueued, loaded["abc"].Status)
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		loaded, err := store.LoadIndex(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestMemoryJobStore_Replies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	require.NoError(t, store.SaveReply(ctx, "alice", "abc", model.ReplyPayload{Reply: "42"}))
	require.NoError(t, store.SaveReply(ctx, "alice", "def", model.ReplyPayload{Reply: "other"}))

	t.Run("load existing", func(t *testing.T) {
		payload, err := store.LoadReply(ctx, "alice", "abc")
		require.NoError(t, err)
		require.NotNil(t, payload)
		assert.Equal(t, "42", payload.Reply)
	})

	t.Run("load absent returns nil", func(t *testing.T) {
		payload, err := store.LoadReply(ctx, "alice", "nope")
		require.NoError(t, err)
		assert.Nil(t, payload)
	})

	t.Run("list reply ids", func(t *testing.T) {
		ids, err := store.ListReplyIDs(ctx, "alice")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"abc", "def"}, ids)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.DeleteReply(ctx, "alice", "abc"))
		require.NoError(t, store.DeleteReply(ctx, "alice", "abc"))

		payload, err := store.LoadReply(ctx, "alice", "abc")
		require.NoError(t, err)
		assert.Nil(t, payload)
	})
}

func TestMemoryJobStore_UsedBytes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()

	require.NoError(t, store.SaveIndex(ctx, "alice", model.JobIndex{}))
	empty, err := store.UsedBytes(ctx, "alice")
	require.NoError(t, err)
	assert.Positive(t, empty) // "{}" still occupies bytes

	require.NoError(t, store.SaveReply(ctx, "alice", "abc", model.ReplyPayload{Reply: "42"}))
	withReply, err := store.UsedBytes(ctx, "alice")
	require.NoError(t, err)
	assert.Greater(t, withReply, empty)

	other, err := store.UsedBytes(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestMemoryJobStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore()
	now := time.Now()

	require.NoError(t, store.SaveIndex(ctx, "alice", model.JobIndex{"abc": model.NewJob("abc", now)}))
	require.NoError(t, store.SaveReply(ctx, "alice", "abc", model.ReplyPayload{Reply: "42"}))
	require.NoError(t, store.SaveIndex(ctx, "bob", model.JobIndex{"xyz": model.NewJob("xyz", now)}))

	require.NoError(t, store.DeleteAll(ctx, "alice"))

	idx, err := store.LoadIndex(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, idx)

	ids, err := store.ListReplyIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Other namespaces untouched.
	bobIdx, err := store.LoadIndex(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobIdx, 1)

	// Deleting again is a no-op.
	require.NoError(t, store.DeleteAll(ctx, "alice"))
}
