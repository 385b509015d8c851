// Package comments is the Bubble Tea pane for a card's comments. All state
// lives in a board.Session; the view only keeps the cursor and editor.
package comments

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/styles"
)

type mode int

const (
	modeNormal mode = iota
	modeEditing
	modeComposing
)

// Options configures a View.
type Options struct {
	// SentinelMargin is how many comments above the last visible one the
	// cursor must reach before the sentinel counts as on screen.
	SentinelMargin int
}

// View is the Bubble Tea sub-model for the comment pane.
type View struct {
	session *board.Session
	outside *comment.Outside
	card    board.Card

	keys    KeyMap
	help    help.Model
	editor  textarea.Model
	spinner spinner.Model
	bodies  *bodyRenderer

	mode   mode
	cursor int
	margin int
	status string
	width  int
	height int
}

// New creates a comment pane for card. Init activates the card.
func New(session *board.Session, outside *comment.Outside, card board.Card, opts Options) View {
	ed := textarea.New()
	ed.Placeholder = "Write a comment..."
	ed.ShowLineNumbers = false
	ed.CharLimit = 2000
	ed.SetHeight(4)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.TextPrimaryStyle),
	)

	return View{
		session: session,
		outside: outside,
		card:    card,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		editor:  ed,
		spinner: sp,
		bodies:  newBodyRenderer(),
		margin:  max(opts.SentinelMargin, 0),
	}
}

// Init activates the card and starts loading its comments.
func (v View) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.Open(v.card))
}

// Open switches the pane to card, discarding all state of the previous one.
func (v *View) Open(card board.Card) tea.Cmd {
	v.card = card
	v.cursor = 0
	v.mode = modeNormal
	v.status = ""
	v.editor.Reset()
	v.editor.Blur()

	ticket := v.session.Activate(card)
	return loadComments(v.session, ticket)
}

// Update handles messages for the comment pane.
func (v View) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	case commentsLoadedMsg:
		return v.handleLoaded(msg)
	case moreLoadedMsg:
		return v.handleMoreLoaded(msg)
	case commentEditedMsg:
		return v.handleEdited(msg)
	case commentDeletedMsg:
		return v.handleDeleted(msg)
	case commentPostedMsg:
		return v.handlePosted(msg)
	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	if v.mode != modeNormal {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}
	return v, nil
}

// HasEditorFocus returns true while the edit or new-comment box is open.
func (v View) HasEditorFocus() bool {
	return v.mode != modeNormal
}

// Cursor returns the index of the highlighted comment.
func (v View) Cursor() int {
	return v.cursor
}

// Status returns the pane's current status line.
func (v View) Status() string {
	return v.status
}

// SetSize updates the view dimensions.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.editor.SetWidth(max(width-4, 10))
	v.help.Width = width
}

func (v View) handleLoaded(msg commentsLoadedMsg) (View, tea.Cmd) {
	if errors.Is(msg.err, board.ErrStale) {
		log.Debug().Int64("card_id", msg.cardID).Msg("ignoring stale comment load")
		return v, nil
	}
	if msg.err != nil {
		v.status = "failed to load comments, press r to retry"
		return v, nil
	}
	v.status = ""
	v.clamp()
	return v, v.checkSentinel()
}

func (v View) handleMoreLoaded(msg moreLoadedMsg) (View, tea.Cmd) {
	switch {
	case errors.Is(msg.err, board.ErrBusy), errors.Is(msg.err, board.ErrStale):
		return v, nil
	case msg.err != nil:
		v.status = "failed to load more comments"
		return v, nil
	}
	v.clamp()
	if !msg.advanced {
		return v, nil
	}
	return v, v.checkSentinel()
}

func (v View) handleEdited(msg commentEditedMsg) (View, tea.Cmd) {
	if errors.Is(msg.err, board.ErrEmptyContent) {
		v.status = "comment cannot be empty"
		return v, nil
	}

	v.mode = modeNormal
	v.editor.Blur()
	v.status = ""
	if msg.err != nil && !errors.Is(msg.err, board.ErrStale) {
		v.status = fmt.Sprintf("edit failed: %v", cause(msg.err))
	}
	return v, nil
}

func (v View) handleDeleted(msg commentDeletedMsg) (View, tea.Cmd) {
	switch {
	case errors.Is(msg.err, board.ErrStale):
		return v, nil
	case msg.err != nil:
		v.status = fmt.Sprintf("delete failed: %v", cause(msg.err))
		return v, nil
	}
	v.status = ""
	v.clamp()
	return v, v.checkSentinel()
}

func (v View) handlePosted(msg commentPostedMsg) (View, tea.Cmd) {
	switch {
	case errors.Is(msg.err, board.ErrEmptyContent):
		v.status = "comment cannot be empty"
		return v, nil
	case errors.Is(msg.err, board.ErrStale):
		v.mode = modeNormal
		v.editor.Blur()
		return v, nil
	case msg.err != nil:
		// Keep the composer open so the text is not lost.
		v.status = fmt.Sprintf("post failed: %v", cause(msg.err))
		return v, nil
	}

	v.mode = modeNormal
	v.editor.Reset()
	v.editor.Blur()
	v.cursor = 0
	v.status = ""
	return v, nil
}

func (v View) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	if v.mode != modeNormal {
		return v.handleEditorKey(msg)
	}
	return v.handleNormalKey(msg)
}

func (v View) handleNormalKey(msg tea.KeyMsg) (View, tea.Cmd) {
	snap := v.session.Snapshot()

	switch {
	case key.Matches(msg, v.keys.Menu):
		if id, ok := v.selectedID(snap); ok {
			v.setErr(v.session.ToggleMenu(id))
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		id, ok := v.selectedID(snap)
		if !ok {
			return v, nil
		}
		if err := v.session.StartEdit(id); err != nil {
			v.setErr(err)
			return v, nil
		}
		_, _, draft := v.session.Selection()
		v.mode = modeEditing
		v.status = ""
		v.editor.SetValue(draft)
		return v, v.editor.Focus()

	case key.Matches(msg, v.keys.Delete):
		id, ok := v.selectedID(snap)
		if !ok {
			return v, nil
		}
		return v, deleteComment(v.session, id)
	}

	// Everything else is an interaction outside any open menu.
	v.outside.Notify()

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, v.checkSentinel()

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(snap.Comments)-1 {
			v.cursor++
		}
		return v, v.checkSentinel()

	case key.Matches(msg, v.keys.More):
		m, err := v.session.BeginMore()
		if err != nil || m == nil {
			return v, nil
		}
		return v, finishMore(v.session, m)

	case key.Matches(msg, v.keys.New):
		v.mode = modeComposing
		v.status = ""
		v.editor.Reset()
		return v, v.editor.Focus()

	case key.Matches(msg, v.keys.Refresh):
		return v, v.Open(v.card)
	}

	return v, nil
}

func (v View) handleEditorKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Save):
		content := v.editor.Value()
		if v.mode == modeComposing {
			return v, postComment(v.session, content)
		}
		_, id, _ := v.session.Selection()
		return v, commitEdit(v.session, id, content)

	case key.Matches(msg, v.keys.Close):
		if v.mode == modeEditing {
			v.session.CancelEdit()
		}
		v.mode = modeNormal
		v.status = ""
		v.editor.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	if v.mode == modeEditing {
		v.session.SetDraft(v.editor.Value())
	}
	return v, cmd
}

// checkSentinel reports sentinel visibility to the session. The session
// takes the load guard before the fetch command is returned, so keys that
// arrive before the command runs cannot request a second page. In a
// terminal the sentinel counts as visible once the cursor is within margin
// of the last visible comment.
func (v View) checkSentinel() tea.Cmd {
	n := len(v.session.Visible())
	visible := n == 0 || v.cursor >= n-1-v.margin
	if m := v.session.SetSentinelVisible(visible); m != nil {
		return finishMore(v.session, m)
	}
	return nil
}

func (v *View) clamp() {
	n := len(v.session.Visible())
	if v.cursor >= n {
		v.cursor = max(n-1, 0)
	}
}

func (v View) selectedID(snap board.Snapshot) (int64, bool) {
	if v.cursor < 0 || v.cursor >= len(snap.Comments) {
		return 0, false
	}
	return snap.Comments[v.cursor].ID, true
}

func (v *View) setErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, board.ErrMutationInFlight):
		v.status = "a change to this comment is still saving"
	case errors.Is(err, board.ErrNotFound):
		v.status = "comment no longer exists"
	default:
		v.status = err.Error()
	}
}

// cause strips the MutationError wrapper for display.
func cause(err error) error {
	var me *board.MutationError
	if errors.As(err, &me) {
		return me.Err
	}
	return err
}
