package board

import (
	"errors"
	"fmt"

	"github.com/colonyops/taskboard/internal/core/comment"
)

var (
	// ErrStale is returned when a result arrives for a card that is no
	// longer active. The result is discarded.
	ErrStale = errors.New("card is no longer active")
	// ErrBusy is returned when a load is already in progress. The request
	// is dropped, not queued.
	ErrBusy = errors.New("load already in progress")
	// ErrMutationInFlight is returned when a comment already has an edit or
	// delete waiting on the server.
	ErrMutationInFlight = errors.New("mutation already in flight for comment")
	// ErrNotFound is returned for ids that are not in the store.
	ErrNotFound = errors.New("comment not found")

	ErrEmptyContent = comment.ErrEmptyContent
	ErrNoCard       = comment.ErrNoCard
)

// FetchError reports a failed comment fetch for a card.
type FetchError struct {
	CardID int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch comments for card %d: %v", e.CardID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError reports a failed edit, delete, or post.
type MutationError struct {
	Op        string
	CommentID int64
	Err       error
}

func (e *MutationError) Error() string {
	if e.CommentID == 0 {
		return fmt.Sprintf("%s comment: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s comment %d: %v", e.Op, e.CommentID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Mutation operation names used in MutationError and events.
const (
	OpEdit   = "edit"
	OpDelete = "delete"
	OpPost   = "post"
)
