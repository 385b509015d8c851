package eventbus_test

import (
	"errors"
	"testing"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/eventbus"
	"github.com/colonyops/taskboard/internal/core/eventbus/testbus"
	"github.com/colonyops/taskboard/internal/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	var payload eventbus.NotificationPublishedPayload
	for _, e := range tb.Events() {
		if e.Event != eventbus.EventNotificationPublished {
			continue
		}
		p, ok := e.Payload.(eventbus.NotificationPublishedPayload)
		require.True(t, ok)
		payload = p
	}

	return payload
}

func TestNotificationRouter_LoadFailed(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishCommentsLoadFailed(eventbus.CommentsLoadFailedPayload{CardID: 42, Err: errors.New("boom")})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelError, p.Level)
	assert.Contains(t, p.Message, "42")
	assert.Contains(t, p.Message, "boom")
}

func TestNotificationRouter_MutationFailed(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishCommentMutationFailed(eventbus.CommentMutationFailedPayload{
		CardID:    1,
		CommentID: 9,
		Op:        "edit",
		Err:       errors.New("forbidden"),
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelError, p.Level)
	assert.Contains(t, p.Message, "edit comment 9")
}

func TestNotificationRouter_CommentDeleted(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishCommentDeleted(eventbus.CommentDeletedPayload{CardID: 1, CommentID: 3})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "comment 3 deleted")
}

func TestNotificationRouter_CommentEdited(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishCommentEdited(eventbus.CommentEditedPayload{Comment: comment.Comment{ID: 5}})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "comment 5 updated")
}

func TestNotificationRouter_NilSafe(t *testing.T) {
	var r *eventbus.NotificationRouter
	assert.NotPanics(t, r.Register)
}
