package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskboard/internal/core/notify"
	"github.com/colonyops/taskboard/internal/core/styles"
	"github.com/colonyops/taskboard/pkg/tuitest"
)

func TestToastView_View_empty(t *testing.T) {
	v := NewToastView(NewToastController())
	assert.Empty(t, v.View())
}

func TestToastView_View_renders_each_level(t *testing.T) {
	tests := []struct {
		level notify.Level
		icon  string
	}{
		{notify.LevelError, styles.IconNotifyError},
		{notify.LevelWarning, styles.IconNotifyWarning},
		{notify.LevelInfo, styles.IconNotifyInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			c := NewToastController()
			v := NewToastView(c)

			c.Push(notify.Notification{Level: tt.level, Message: "test msg"})

			out := v.View()
			require.NotEmpty(t, out)
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "test msg")
		})
	}
}

func TestToastView_View_shows_repeat_count(t *testing.T) {
	c := NewToastController()
	v := NewToastView(c)

	c.Push(notify.Notification{Level: notify.LevelError, Message: "offline"})
	c.Push(notify.Notification{Level: notify.LevelError, Message: "offline"})

	assert.Contains(t, tuitest.StripANSI(v.View()), "offline (x2)")
}

func TestToastView_Overlay_empty_returns_background(t *testing.T) {
	v := NewToastView(NewToastController())
	assert.Equal(t, "background", v.Overlay("background", 80, 24))
}

func TestToastView_Overlay_positions_lower_right(t *testing.T) {
	c := NewToastController()
	v := NewToastView(c)
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "saved"})

	bg := strings.Repeat(strings.Repeat(".", 80)+"\n", 9) + strings.Repeat(".", 80)
	out := tuitest.StripANSI(v.Overlay(bg, 80, 10))
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 10)
	assert.Equal(t, strings.Repeat(".", 80), lines[0], "top rows untouched")

	var found bool
	for _, line := range lines[5:] {
		if i := strings.Index(line, "saved"); i >= 0 {
			found = true
			assert.Greater(t, i, 80-toastWidth-2)
		}
	}
	assert.True(t, found, "toast text in the bottom rows")
}
