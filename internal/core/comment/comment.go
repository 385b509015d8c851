// Package comment defines the comment domain types and the in-memory state
// that backs a card's comment pane: the authoritative store, the visible
// window over it, the load trigger guard, and the selection state machine.
package comment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Validation errors for NewComment.
var (
	ErrEmptyContent = errors.New("content is required")
	ErrNoCard       = errors.New("card id is required")
)

// TimestampLayout is the display layout for comment timestamps.
const TimestampLayout = "2006.01.02 15:04"

// Author is the user who wrote a comment.
type Author struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"profileImageUrl,omitempty"` // empty when the user has no avatar
}

// Comment is a single comment attached to a card. Identity is ID; only
// Content and UpdatedAt change after a comment has been fetched.
type Comment struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"cardId"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasAvatar reports whether the author has an avatar image.
func (c Comment) HasAvatar() bool {
	return c.Author.AvatarURL != ""
}

// NewComment is the input for creating a comment on a card.
type NewComment struct {
	CardID      int64  `json:"cardId"`
	ColumnID    int64  `json:"columnId"`
	DashboardID int64  `json:"dashboardId"`
	Content     string `json:"content"`
}

// Validate checks that the comment input meets all constraints.
func (n NewComment) Validate() error {
	if n.CardID <= 0 {
		return ErrNoCard
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// FetchRequest describes one page request against a Source.
//
// With the current backend contract Size is the only field that matters:
// the server ignores Cursor and returns the newest Size comments, so callers
// ask for a large page and paginate client side. Cursor is honoured only
// when the session runs in cursor paging mode.
type FetchRequest struct {
	CardID int64
	Size   int
	Cursor *int64
}

// Page is the result of a FetchRequest. NextCursor is nil when the server
// reports no further pages.
type Page struct {
	Comments   []Comment
	NextCursor *int64
}

// Source is the remote collaborator that owns comments.
type Source interface {
	FetchComments(ctx context.Context, req FetchRequest) (Page, error)
	UpdateComment(ctx context.Context, id int64, content string) (Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	CreateComment(ctx context.Context, in NewComment) (Comment, error)
}
