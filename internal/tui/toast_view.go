package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/taskboard/internal/core/notify"
	"github.com/colonyops/taskboard/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast stack, oldest on top.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	content := icon + " " + t.notification.Message
	if t.count > 1 {
		content += fmt.Sprintf(" (x%d)", t.count)
	}
	return style.Width(toastWidth).Render(content)
}

// Overlay draws the toast stack over the bottom-right corner of background.
// Background lines are cut at the toast's left edge.
func (v *ToastView) Overlay(background string, width, height int) string {
	content := v.View()
	if content == "" {
		return background
	}

	lines := strings.Split(background, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}

	toastLines := strings.Split(content, "\n")
	x := max(width-lipgloss.Width(content)-1, 0)
	top := max(len(lines)-len(toastLines), 0)

	for i, tl := range toastLines {
		row := top + i
		if row >= len(lines) {
			break
		}
		line := ansi.Truncate(lines[row], x, "")
		if pad := x - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		lines[row] = line + tl
	}
	return strings.Join(lines, "\n")
}
