// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskboard.
package eventbus

import (
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/notify"
)

// Event names a kind of event on the bus.
type Event string

// Keep list sorted A-Z.
const (
	EventCardActivated         Event = "card.activated"
	EventCommentDeleted        Event = "comment.deleted"
	EventCommentEdited         Event = "comment.edited"
	EventCommentMutationFailed Event = "comment.mutation-failed"
	EventCommentPosted         Event = "comment.posted"
	EventCommentsLoadFailed    Event = "comments.load-failed"
	EventCommentsLoaded        Event = "comments.loaded"
	EventNotificationPublished Event = "notification.published"
)

// CardActivatedPayload is emitted when the comment pane switches cards.
type CardActivatedPayload struct {
	CardID int64
}

// CommentsLoadedPayload is emitted when a fetch result is applied.
type CommentsLoadedPayload struct {
	CardID  int64
	Count   int
	Visible int
}

// CommentsLoadFailedPayload is emitted when a fetch fails.
type CommentsLoadFailedPayload struct {
	CardID int64
	Err    error
}

// CommentEditedPayload is emitted after an edit is confirmed by the server.
type CommentEditedPayload struct {
	Comment comment.Comment
}

// CommentDeletedPayload is emitted after a delete is confirmed by the server.
type CommentDeletedPayload struct {
	CardID    int64
	CommentID int64
}

// CommentPostedPayload is emitted after a new comment is created.
type CommentPostedPayload struct {
	Comment comment.Comment
}

// CommentMutationFailedPayload is emitted when the server rejects an edit,
// delete, or post.
type CommentMutationFailedPayload struct {
	CardID    int64
	CommentID int64
	Op        string
	Err       error
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}
