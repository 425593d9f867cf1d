package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayerbe/gns-core/store"
)

func TestThreadGetOrCreateAsymmetricCoalesce(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Threads().GetOrCreate(ctx, "t1", "pub1", "", "hello", 100))
	th, err := s.Threads().Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "hello", th.Subject)
	assert.Equal(t, "", th.ParticipantHandle)

	// Second call supplies a handle and a different subject: handle should
	// win (new wins), subject should not change (existing wins).
	require.NoError(t, s.Threads().GetOrCreate(ctx, "t1", "pub1", "alice", "goodbye", 200))
	th, err = s.Threads().Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "alice", th.ParticipantHandle)
	assert.Equal(t, "hello", th.Subject)
}

func TestThreadUpdateForMessageIncrementsUnreadOnlyWhenIncoming(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Threads().GetOrCreate(ctx, "t1", "pub1", "alice", "", 100))

	require.NoError(t, s.Threads().UpdateForMessage(ctx, "t1", 200, true))
	th, _ := s.Threads().Get(ctx, "t1")
	assert.Equal(t, 1, th.UnreadCount)
	assert.Equal(t, int64(200), th.LastMessageAtMs)

	require.NoError(t, s.Threads().UpdateForMessage(ctx, "t1", 300, false))
	th, _ = s.Threads().Get(ctx, "t1")
	assert.Equal(t, 1, th.UnreadCount)
	assert.Equal(t, int64(300), th.LastMessageAtMs)

	require.NoError(t, s.Threads().MarkRead(ctx, "t1"))
	th, _ = s.Threads().Get(ctx, "t1")
	assert.Equal(t, 0, th.UnreadCount)
}

func TestMessageListByThreadOrdersByTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Messages().Upsert(ctx, &store.Message{ID: "m2", ThreadID: "t1", TimestampMs: 200}))
	require.NoError(t, s.Messages().Upsert(ctx, &store.Message{ID: "m1", ThreadID: "t1", TimestampMs: 100}))
	require.NoError(t, s.Messages().Upsert(ctx, &store.Message{ID: "m3", ThreadID: "other", TimestampMs: 50}))

	msgs, err := s.Messages().ListByThread(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestBreadcrumbSaveDedupesOnCellAndTimestamp(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Breadcrumbs().Save(ctx, &store.StoredBreadcrumb{CellID: "c1", TimestampS: 100, PublicKey: "pub"}))
	require.NoError(t, s.Breadcrumbs().Save(ctx, &store.StoredBreadcrumb{CellID: "c1", TimestampS: 100, PublicKey: "pub-should-be-ignored"}))

	count, err := s.Breadcrumbs().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := s.Breadcrumbs().List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pub", list[0].PublicKey)
}

func TestBreadcrumbUniqueCellsAndSpan(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Breadcrumbs().Save(ctx, &store.StoredBreadcrumb{CellID: "c1", TimestampS: 100}))
	require.NoError(t, s.Breadcrumbs().Save(ctx, &store.StoredBreadcrumb{CellID: "c2", TimestampS: 200}))
	require.NoError(t, s.Breadcrumbs().Save(ctx, &store.StoredBreadcrumb{CellID: "c1", TimestampS: 300}))

	unique, err := s.Breadcrumbs().CountUniqueCells(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, unique)

	first, ok, err := s.Breadcrumbs().FirstTimestamp(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(100), first)

	last, ok, err := s.Breadcrumbs().LastTimestamp(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(300), last)
}

func TestPendingEnqueueAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Pending().Enqueue(ctx, &store.PendingMessage{ID: "p1", CreatedAtMs: 100}))
	require.NoError(t, s.Pending().Enqueue(ctx, &store.PendingMessage{ID: "p2", CreatedAtMs: 200}))

	count, err := s.Pending().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.Pending().Remove(ctx, "p1"))
	list, err := s.Pending().List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)
}

func TestSyncStateGetSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, ok, err := s.Sync().Get(ctx, "last_sync")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Sync().Set(ctx, "last_sync", "12345"))
	v, ok, err := s.Sync().Get(ctx, "last_sync")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12345", v)
}

func TestReactionsAccumulatePerMessage(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Reactions().Save(ctx, &store.Reaction{MessageID: "m1", FromPublicKey: "a", Emoji: "👍"}))
	require.NoError(t, s.Reactions().Save(ctx, &store.Reaction{MessageID: "m1", FromPublicKey: "b", Emoji: "❤️"}))

	reactions, err := s.Reactions().ListByMessage(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, reactions, 2)
}
