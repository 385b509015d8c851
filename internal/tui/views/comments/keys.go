package comments

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the comment pane's key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Menu    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	New     key.Binding
	More    key.Binding
	Refresh key.Binding
	Close   key.Binding
	Save    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m", "enter"),
			key.WithHelp("m", "menu"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		More: key.NewBinding(
			key.WithKeys("+", "G"),
			key.WithHelp("+", "show more"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer for normal mode.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Menu, k.Edit, k.Delete, k.New, k.More, k.Refresh}
}

// EditorHelp returns the bindings shown while the editor is open.
func (k KeyMap) EditorHelp() []key.Binding {
	return []key.Binding{k.Save, k.Close}
}
