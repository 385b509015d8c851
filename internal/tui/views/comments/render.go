package comments

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/styles"
)

// View renders the comment pane.
func (v View) View() string {
	snap := v.session.Snapshot()

	header := v.renderHeader(snap)
	footer := v.renderFooter(snap)

	var top []string
	if v.mode == modeComposing {
		top = append(top,
			styles.TextSecondaryStyle.Render("New comment"),
			styles.CommentEditorStyle.Render(v.editor.View()),
		)
	}

	blocks := make([]string, 0, len(snap.Comments)+1)
	for i, c := range snap.Comments {
		blocks = append(blocks, v.renderComment(c, i, snap))
	}
	if tail := v.renderTail(snap); tail != "" {
		blocks = append(blocks, tail)
	}

	avail := 0
	if v.height > 0 {
		avail = v.height - lipgloss.Height(header) - lipgloss.Height(footer)
		for _, t := range top {
			avail -= lipgloss.Height(t)
		}
	}

	parts := []string{header}
	parts = append(parts, top...)
	parts = append(parts, fitBlocks(blocks, v.cursor, avail)...)
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v View) renderHeader(snap board.Snapshot) string {
	title := fmt.Sprintf("%s Comments", styles.IconComment)
	if snap.Loaded {
		title += styles.TextMutedStyle.Render(fmt.Sprintf(" (%d of %d)", len(snap.Comments), snap.Total))
	}
	return styles.PaneTitleStyle.Render(title)
}

func (v View) renderComment(c comment.Comment, idx int, snap board.Snapshot) string {
	meta := styles.CommentAuthorStyle.Render(styles.IconUser+" "+c.Author.Nickname) +
		" " + styles.CommentTimeStyle.Render(formatTimestamp(c.CreatedAt))
	if c.UpdatedAt.After(c.CreatedAt) {
		meta += styles.TextMutedStyle.Render(" (edited)")
	}
	if snap.InFlight[c.ID] {
		meta += " " + v.spinner.View()
	}

	width := max(v.width-4, 20)
	lines := []string{meta}

	editing := snap.State == comment.StateEditing && snap.SelectedID == c.ID
	if editing && v.mode == modeEditing {
		lines = append(lines, styles.CommentEditorStyle.Render(v.editor.View()))
	} else {
		lines = append(lines, v.bodies.Render(c.Content, width))
	}

	if snap.State == comment.StateMenuOpen && snap.SelectedID == c.ID {
		lines = append(lines, renderMenu())
	}

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if idx == v.cursor {
		return styles.CommentSelectedStyle.Render(block)
	}
	return styles.CommentNormalStyle.Render(block)
}

func renderMenu() string {
	items := []string{
		styles.CommentMenuItemStyle.Render(styles.IconPencil + " e edit"),
		styles.CommentMenuItemStyle.Render(styles.IconTrash + " d delete"),
	}
	return styles.CommentMenuStyle.Render(strings.Join(items, "  "))
}

// renderTail renders the row below the last visible comment: the loading
// indicator, the load error, the sentinel, or the empty state.
func (v View) renderTail(snap board.Snapshot) string {
	switch {
	case snap.Loading:
		return v.spinner.View() + " " + styles.TextMutedStyle.Render("loading comments")
	case snap.Err != nil && len(snap.Comments) == 0:
		return styles.TextErrorStyle.Render("could not load comments")
	case snap.HasMore:
		return styles.SentinelStyle.Render(styles.IconMore + " more comments")
	case snap.Loaded && snap.Total == 0:
		return styles.TextMutedStyle.Render("No comments yet")
	}
	return ""
}

func (v View) renderFooter(_ board.Snapshot) string {
	var lines []string
	if v.status != "" {
		lines = append(lines, styles.TextWarningStyle.Render(v.status))
	}

	bindings := v.keys.ShortHelp()
	if v.mode != modeNormal {
		bindings = v.keys.EditorHelp()
	}
	lines = append(lines, styles.HelpStyle.Render(v.help.ShortHelpView(bindings)))
	return strings.Join(lines, "\n")
}

// fitBlocks returns the blocks that fit in height lines while keeping the
// cursor's block on screen. A height of zero or less disables fitting.
func fitBlocks(blocks []string, cursor, height int) []string {
	if height <= 0 || len(blocks) == 0 {
		return blocks
	}
	cursor = min(max(cursor, 0), len(blocks)-1)

	start := cursor
	used := lipgloss.Height(blocks[cursor])
	for start > 0 {
		h := lipgloss.Height(blocks[start-1])
		if used+h > height {
			break
		}
		used += h
		start--
	}

	end := cursor + 1
	for end < len(blocks) {
		h := lipgloss.Height(blocks[end])
		if used+h > height {
			break
		}
		used += h
		end++
	}
	return blocks[start:end]
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(comment.TimestampLayout) + " · " + humanize.Time(t)
}

// bodyRenderer renders comment bodies as markdown and caches the output per
// content for the current width.
type bodyRenderer struct {
	width int
	term  *glamour.TermRenderer
	cache map[string]string
}

func newBodyRenderer() *bodyRenderer {
	return &bodyRenderer{cache: make(map[string]string)}
}

func (r *bodyRenderer) Render(content string, width int) string {
	if r.term == nil || width != r.width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Debug().Err(err).Msg("markdown renderer unavailable")
			return styles.CommentBodyStyle.Width(width).Render(content)
		}
		r.term = term
		r.width = width
		clear(r.cache)
	}

	if out, ok := r.cache[content]; ok {
		return out
	}

	out, err := r.term.Render(content)
	if err != nil {
		log.Debug().Err(err).Msg("render comment markdown")
		out = styles.CommentBodyStyle.Width(width).Render(content)
	}
	out = strings.Trim(out, "\n")
	r.cache[content] = out
	return out
}
