package board

import (
	"context"
	"strings"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/config"
)

// Service wraps comment.Source with validation and paging for one-shot
// callers such as the CLI.
type Service struct {
	src    comment.Source
	config *config.Config
}

// NewService creates a new Service.
func NewService(src comment.Source, cfg *config.Config) *Service {
	return &Service{
		src:    src,
		config: cfg,
	}
}

// List returns up to limit comments for cardID, newest first. A limit of 0
// uses comments.fetch_size. In cursor paging mode pages are followed until
// the limit is reached or the server runs out.
func (s *Service) List(ctx context.Context, cardID int64, limit int) ([]comment.Comment, error) {
	if cardID <= 0 {
		return nil, ErrNoCard
	}
	if limit <= 0 {
		limit = s.config.Comments.FetchSize
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.API.Timeout)
	defer cancel()

	if s.config.Comments.Paging != config.PagingCursor {
		page, err := s.src.FetchComments(ctx, comment.FetchRequest{CardID: cardID, Size: limit})
		if err != nil {
			return nil, &FetchError{CardID: cardID, Err: err}
		}
		return dedupe(page.Comments, limit), nil
	}

	var (
		out    []comment.Comment
		cursor *int64
	)
	for len(out) < limit {
		size := min(s.config.Comments.PageSize, limit-len(out))
		page, err := s.src.FetchComments(ctx, comment.FetchRequest{CardID: cardID, Size: size, Cursor: cursor})
		if err != nil {
			return nil, &FetchError{CardID: cardID, Err: err}
		}
		out = append(out, page.Comments...)
		if page.NextCursor == nil || len(page.Comments) == 0 {
			break
		}
		cursor = page.NextCursor
	}
	return dedupe(out, limit), nil
}

// Edit replaces the content of comment id.
func (s *Service) Edit(ctx context.Context, id int64, content string) (comment.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return comment.Comment{}, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.API.Timeout)
	defer cancel()

	c, err := s.src.UpdateComment(ctx, id, content)
	if err != nil {
		return comment.Comment{}, &MutationError{Op: OpEdit, CommentID: id, Err: err}
	}
	return c, nil
}

// Delete removes comment id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.API.Timeout)
	defer cancel()

	if err := s.src.DeleteComment(ctx, id); err != nil {
		return &MutationError{Op: OpDelete, CommentID: id, Err: err}
	}
	return nil
}

// Post creates a comment.
func (s *Service) Post(ctx context.Context, in comment.NewComment) (comment.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := in.Validate(); err != nil {
		return comment.Comment{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.API.Timeout)
	defer cancel()

	c, err := s.src.CreateComment(ctx, in)
	if err != nil {
		return comment.Comment{}, &MutationError{Op: OpPost, Err: err}
	}
	return c, nil
}

func dedupe(cs []comment.Comment, limit int) []comment.Comment {
	store := comment.NewStore(0)
	store.Load(cs)
	return store.Slice(limit)
}
