// Package tui is the interactive card view: a header, the comment pane, and
// toast notifications fed from the event bus.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/notify"
	"github.com/colonyops/taskboard/internal/core/styles"
	"github.com/colonyops/taskboard/internal/tui/views/comments"
)

// NotificationMsg delivers a notification from outside the program, for
// example from an event bus subscriber via tea.Program.Send.
type NotificationMsg notify.Notification

// Options configures the root model.
type Options struct {
	Card board.Card
}

// Model is the root Bubble Tea model.
type Model struct {
	session   *board.Session
	card      board.Card
	comments  comments.View
	toasts    *ToastController
	toastView *ToastView
	keys      KeyMap

	width  int
	height int
}

// New builds the root model for app. The caller owns the session and closes
// it after the program exits.
func New(app *board.App, session *board.Session, opts Options) Model {
	toasts := NewToastController()
	return Model{
		session: session,
		card:    opts.Card,
		comments: comments.New(session, app.Outside, opts.Card, comments.Options{
			SentinelMargin: app.Config.TUI.SentinelMargin,
		}),
		toasts:    toasts,
		toastView: NewToastView(toasts),
		keys:      DefaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.comments.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.comments.SetSize(msg.Width, max(msg.Height-lipgloss.Height(m.renderHeader()), 0))
		return m, nil

	case NotificationMsg:
		m.toasts.Push(notify.Notification(msg))
		if m.toasts.Ticking() {
			return m, nil
		}
		m.toasts.SetTicking(true)
		return m, scheduleToastTick()

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if !m.toasts.HasToasts() {
			m.toasts.SetTicking(false)
			return m, nil
		}
		return m, scheduleToastTick()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if !m.comments.HasEditorFocus() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.DismissToast) && m.toasts.HasToasts():
				m.toasts.Dismiss()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.comments, cmd = m.comments.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	out := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.comments.View())
	return m.toastView.Overlay(out, m.width, m.height)
}

func (m Model) renderHeader() string {
	title := styles.CommandHeaderStyle.Render("taskboard")
	card := styles.TextMutedStyle.Render(fmt.Sprintf(" card #%d", m.card.ID))
	return title + card + "\n" + styles.DividerStyle.Render(divider(m.width))
}

func divider(width int) string {
	if width <= 0 {
		width = 40
	}
	return strings.Repeat("─", width)
}
