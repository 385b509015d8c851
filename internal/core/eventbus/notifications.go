package eventbus

import (
	"fmt"

	"github.com/colonyops/taskboard/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeCommentsLoadFailed(func(p CommentsLoadFailedPayload) {
		r.notifyf(notify.LevelError, "failed to load comments for card %d: %v", p.CardID, p.Err)
	})

	r.bus.SubscribeCommentMutationFailed(func(p CommentMutationFailedPayload) {
		if p.CommentID == 0 {
			r.notifyf(notify.LevelError, "%s failed: %v", p.Op, p.Err)
			return
		}
		r.notifyf(notify.LevelError, "%s comment %d failed: %v", p.Op, p.CommentID, p.Err)
	})

	r.bus.SubscribeCommentDeleted(func(p CommentDeletedPayload) {
		r.notifyf(notify.LevelInfo, "comment %d deleted", p.CommentID)
	})

	r.bus.SubscribeCommentEdited(func(p CommentEditedPayload) {
		r.notifyf(notify.LevelInfo, "comment %d updated", p.Comment.ID)
	})

	r.bus.SubscribeCommentPosted(func(_ CommentPostedPayload) {
		r.notifyf(notify.LevelInfo, "comment posted")
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
