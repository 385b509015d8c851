package tui

import (
	"time"

	"github.com/colonyops/taskboard/internal/core/notify"
)

const (
	infoToastTTL      = 4 * time.Second
	errorToastTTL     = 8 * time.Second
	maxToasts         = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	count        int
}

// ToastController keeps the stack of visible toasts. Errors stay up longer
// than info messages and a repeat of the newest toast bumps its count
// instead of stacking a copy.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

func ttlFor(level notify.Level) time.Duration {
	if level == notify.LevelError || level == notify.LevelWarning {
		return errorToastTTL
	}
	return infoToastTTL
}

// Push adds a notification. The oldest toast is evicted past maxToasts.
func (c *ToastController) Push(n notify.Notification) {
	if last := len(c.toasts) - 1; last >= 0 {
		prev := &c.toasts[last]
		if prev.notification.Level == n.Level && prev.notification.Message == n.Message {
			prev.count++
			prev.remaining = ttlFor(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{
		notification: n,
		remaining:    ttlFor(n.Level),
		count:        1,
	})
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
}

// Tick counts every toast down by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking reports whether a tick is scheduled.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
