package eventbus_test

import (
	"testing"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/eventbus"
	"github.com/colonyops/taskboard/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	// Nop logger; only checks the hooks don't panic.
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.Nop())

	tb.PublishCardActivated(eventbus.CardActivatedPayload{CardID: 1})
	tb.PublishCommentEdited(eventbus.CommentEditedPayload{
		Comment: comment.Comment{ID: 4, Content: "updated"},
	})
	tb.PublishCommentDeleted(eventbus.CommentDeletedPayload{CardID: 1, CommentID: 4})

	tb.AssertPublished(t, eventbus.EventCommentDeleted)
}
