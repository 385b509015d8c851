package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings handled by the root model. Pane bindings live
// with the pane.
type KeyMap struct {
	Quit         key.Binding
	ForceQuit    key.Binding
	DismissToast key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		DismissToast: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
	}
}
