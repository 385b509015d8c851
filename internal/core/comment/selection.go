package comment

import "fmt"

// SelectionState is the state of the comment pane's per-comment UI.
type SelectionState int

// Selection states.
const (
	StateClosed SelectionState = iota
	StateMenuOpen
	StateEditing
)

func (s SelectionState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateMenuOpen:
		return "menu-open"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("SelectionState(%d)", int(s))
	}
}

// OutsideSource delivers "interaction outside the open menu" signals.
// Subscribe returns a function that removes the subscription.
type OutsideSource interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Selection tracks which comment has its context menu open and which one is
// being edited. At most one comment is in either state; entering a state
// for one comment leaves any previous state.
//
// While a menu is open the selection holds a subscription on its
// OutsideSource. The subscription is taken on entry to MenuOpen and released
// on every exit path.
type Selection struct {
	state SelectionState
	id    int64
	draft string

	outside   OutsideSource
	onOutside func()
	release   func()
}

// NewSelection creates a closed selection. outside may be nil, in which
// case outside-interaction dismissal is disabled. onOutside is invoked when
// the source reports an outside interaction while a menu is open; when nil
// the selection closes itself.
func NewSelection(outside OutsideSource, onOutside func()) *Selection {
	s := &Selection{outside: outside, onOutside: onOutside}
	if s.onOutside == nil {
		s.onOutside = s.CloseMenu
	}
	return s
}

// State returns the current state.
func (s *Selection) State() SelectionState {
	return s.state
}

// MenuOpenFor returns the id whose menu is open.
func (s *Selection) MenuOpenFor() (int64, bool) {
	return s.id, s.state == StateMenuOpen
}

// Editing returns the id being edited.
func (s *Selection) Editing() (int64, bool) {
	return s.id, s.state == StateEditing
}

// IsEditing reports whether id is in inline-edit mode.
func (s *Selection) IsEditing(id int64) bool {
	return s.state == StateEditing && s.id == id
}

// IsMenuOpen reports whether id's menu is open.
func (s *Selection) IsMenuOpen(id int64) bool {
	return s.state == StateMenuOpen && s.id == id
}

// Draft returns the in-progress edit content.
func (s *Selection) Draft() string {
	return s.draft
}

// SetDraft replaces the draft while editing. It is ignored in other states.
func (s *Selection) SetDraft(content string) {
	if s.state == StateEditing {
		s.draft = content
	}
}

// OpenMenu opens the menu for id, closing whatever was open before.
func (s *Selection) OpenMenu(id int64) {
	if s.state == StateMenuOpen && s.id == id {
		return
	}
	s.leave()
	s.state = StateMenuOpen
	s.id = id
	if s.outside != nil {
		s.release = s.outside.Subscribe(s.onOutside)
	}
}

// ToggleMenu opens id's menu, or closes it if it is already open.
func (s *Selection) ToggleMenu(id int64) {
	if s.IsMenuOpen(id) {
		s.Close()
		return
	}
	s.OpenMenu(id)
}

// CloseMenu closes an open menu. Editing state is left alone.
func (s *Selection) CloseMenu() {
	if s.state == StateMenuOpen {
		s.Close()
	}
}

// StartEdit enters inline-edit mode for id with content as the initial
// draft. Any open menu is closed.
func (s *Selection) StartEdit(id int64, content string) {
	s.leave()
	s.state = StateEditing
	s.id = id
	s.draft = content
}

// Close returns to Closed from any state, discarding the draft.
func (s *Selection) Close() {
	s.leave()
}

// Forget closes the selection if it refers to id.
func (s *Selection) Forget(id int64) {
	if s.state != StateClosed && s.id == id {
		s.Close()
	}
}

func (s *Selection) leave() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
	s.state = StateClosed
	s.id = 0
	s.draft = ""
}
