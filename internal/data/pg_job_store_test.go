package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/jobtrack/internal/domain/model"
	"github.com/promptlab/jobtrack/internal/testutil"
)

func setupPGStore(t *testing.T) (*PGJobStore, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	store, err := NewPGJobStore(ctx, db)
	require.NoError(t, err)

	ns := "test-" + t.Name()
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM job_entries WHERE namespace LIKE $1`, ns+"%")
	})
	return store, ctx
}

func pgTestNS(t *testing.T, suffix string) string {
	t.Helper()
	return "test-" + t.Name() + "-" + suffix
}

func TestPGJobStore_IndexRoundTrip(t *testing.T) {
	store, ctx := setupPGStore(t)
	ns := pgTestNS(t, "alice")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	idx, err := store.LoadIndex(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, idx)

	job := model.NewJob("abc", now)
	require.NoError(t, store.SaveIndex(ctx, ns, model.JobIndex{"abc": job}))

	// Upsert replaces the document in place.
	require.True(t, job.MarkFailed("boom", now.Add(time.Second)))
	require.NoError(t, store.SaveIndex(ctx, ns, model.JobIndex{"abc": job}))

	loaded, err := store.LoadIndex(ctx, ns)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, model.JobStatusFailed, loaded["abc"].Status)
}

func TestPGJobStore_RepliesAndSize(t *testing.T) {
	store, ctx := setupPGStore(t)
	ns := pgTestNS(t, "alice")

	require.NoError(t, store.SaveIndex(ctx, ns, model.JobIndex{}))
	require.NoError(t, store.SaveReply(ctx, ns, "abc", model.ReplyPayload{Reply: "42"}))

	payload, err := store.LoadReply(ctx, ns, "abc")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "42", payload.Reply)

	absent, err := store.LoadReply(ctx, ns, "nope")
	require.NoError(t, err)
	assert.Nil(t, absent)

	ids, err := store.ListReplyIDs(ctx, ns)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"abc"}, ids)

	used, err := store.UsedBytes(ctx, ns)
	require.NoError(t, err)
	assert.Positive(t, used)

	require.NoError(t, store.DeleteReply(ctx, ns, "abc"))
	require.NoError(t, store.DeleteReply(ctx, ns, "abc"))

	ids, err = store.ListReplyIDs(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPGJobStore_Health(t *testing.T) {
	store, ctx := setupPGStore(t)
	require.NoError(t, store.Health(ctx))
}

func TestPGJobStore_DeleteAll(t *testing.T) {
	store, ctx := setupPGStore(t)
	alice := pgTestNS(t, "alice")
	bob := pgTestNS(t, "bob")
	now := time.Now()

	require.NoError(t, store.SaveIndex(ctx, alice, model.JobIndex{"abc": model.NewJob("abc", now)}))
	require.NoError(t, store.SaveReply(ctx, alice, "abc", model.ReplyPayload{Reply: "42"}))
	require.NoError(t, store.SaveIndex(ctx, bob, model.JobIndex{"xyz": model.NewJob("xyz", now)}))

	require.NoError(t, store.DeleteAll(ctx, alice))

	idx, err := store.LoadIndex(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, idx)

	bobIdx, err := store.LoadIndex(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobIdx, 1)

	require.NoError(t, store.DeleteAll(ctx, alice))
}
