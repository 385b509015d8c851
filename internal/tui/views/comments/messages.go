package comments

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/comment"
)

type commentsLoadedMsg struct {
	cardID int64
	err    error
}

type moreLoadedMsg struct {
	advanced bool
	err      error
}

type commentEditedMsg struct {
	id  int64
	err error
}

type commentDeletedMsg struct {
	id  int64
	err error
}

type commentPostedMsg struct {
	comment comment.Comment
	err     error
}

func loadComments(s *board.Session, t board.Ticket) tea.Cmd {
	return func() tea.Msg {
		err := s.Load(context.Background(), t)
		return commentsLoadedMsg{cardID: t.CardID(), err: err}
	}
}

func finishMore(s *board.Session, m *board.MoreRequest) tea.Cmd {
	return func() tea.Msg {
		advanced, err := s.FinishMore(context.Background(), m)
		return moreLoadedMsg{advanced: advanced, err: err}
	}
}

func commitEdit(s *board.Session, id int64, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.CommitEdit(context.Background(), id, content)
		return commentEditedMsg{id: id, err: err}
	}
}

func deleteComment(s *board.Session, id int64) tea.Cmd {
	return func() tea.Msg {
		err := s.RequestDelete(context.Background(), id)
		return commentDeletedMsg{id: id, err: err}
	}
}

func postComment(s *board.Session, content string) tea.Cmd {
	return func() tea.Msg {
		c, err := s.Post(context.Background(), content)
		return commentPostedMsg{comment: c, err: err}
	}
}
