// Package board is the task board client's application layer. Session is
// the comment engine behind a card's detail view; Service offers one-shot
// comment operations for the CLI.
package board

import (
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/core/eventbus"
)

// App is the central entry point for all taskboard operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Comments *Service

	Source  comment.Source
	Config  *config.Config
	Bus     *eventbus.EventBus
	Outside *comment.Outside
}

// NewApp constructs an App from explicit dependencies.
func NewApp(src comment.Source, cfg *config.Config, bus *eventbus.EventBus) *App {
	return &App{
		Comments: NewService(src, cfg),
		Source:   src,
		Config:   cfg,
		Bus:      bus,
		Outside:  comment.NewOutside(),
	}
}

// NewSession creates a comment session configured from the app config.
func (a *App) NewSession() *Session {
	return NewSession(a.Source, SessionOptions{
		PageSize:  a.Config.Comments.PageSize,
		FetchSize: a.Config.Comments.FetchSize,
		Cursor:    a.Config.Comments.Paging == config.PagingCursor,
		Timeout:   a.Config.API.Timeout,
		Outside:   a.Outside,
		Bus:       a.Bus,
	})
}
