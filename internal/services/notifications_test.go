package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySuppressesSelfAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.notifications

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	service.now = func() time.Time { return now }

	event := Event{Recipient: "alice", Actor: "bob", Verb: VerbUpvotedQuestion, Target: QuestionTarget("q-1")}

	assert.True(t, service.Notify(ctx, event))
	assert.False(t, service.Notify(ctx, event), "duplicate inside the window")

	self := event
	self.Actor = "alice"
	assert.False(t, service.Notify(ctx, self))
	assert.False(t, service.Notify(ctx, Event{Actor: "bob", Verb: VerbUpvotedQuestion, Target: QuestionTarget("q-1")}))

	// a different target or verb is a different notification
	other := event
	other.Target = QuestionTarget("q-2")
	assert.True(t, service.Notify(ctx, other))
	down := event
	down.Verb = VerbDownvotedQuestion
	assert.True(t, service.Notify(ctx, down))

	now = now.Add(DefaultDedupWindow + time.Second)
	assert.True(t, service.Notify(ctx, event), "window elapsed")

	_, total, err := service.List(ctx, alice, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestNotificationReadState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.notifications

	for _, target := range []string{"q-1", "q-2", "q-3"} {
		require.True(t, service.Notify(ctx, Event{Recipient: "alice", Actor: "bob", Verb: VerbAnsweredQuestion, Target: QuestionTarget(target)}))
	}

	unread, err := service.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	items, _, err := service.List(ctx, alice, 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "q-3", items[0].TargetID)

	require.NoError(t, service.MarkRead(ctx, alice, items[0].ID))
	// marking again is fine
	require.NoError(t, service.MarkRead(ctx, alice, items[0].ID))

	unread, err = service.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	// someone else's notification looks missing
	err = service.MarkRead(ctx, student2, items[1].ID)
	requireCode(t, err, http.StatusNotFound, CodeNotFound)

	marked, err := service.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = service.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = service.UnreadCount(ctx, anonymous)
	requireCode(t, err, http.StatusUnauthorized, CodeUnauthorized)
}

func TestPruneNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.notifications

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)
	service.now = func() time.Time { return now }
	require.True(t, service.Notify(ctx, Event{Recipient: "alice", Actor: "bob", Verb: VerbUpvotedPost, Target: PostTarget("p-1")}))

	now = now.AddDate(0, 4, 0)
	require.True(t, service.Notify(ctx, Event{Recipient: "alice", Actor: "bob", Verb: VerbUpvotedPost, Target: PostTarget("p-2")}))

	deleted, err := service.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	items, total, err := service.List(ctx, alice, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "p-2", items[0].TargetID)
}
