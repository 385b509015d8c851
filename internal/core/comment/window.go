package comment

// DefaultPageSize is the number of comments revealed per page.
const DefaultPageSize = 3

// Window is the visible prefix of a Store. It only tracks a length; the
// visible comments are always read from the store, so the window can never
// hold a second, independently mutated copy of the list.
//
// Every method takes the current store length as total.
type Window struct {
	pageSize int
	length   int
}

// NewWindow creates an empty window. Non-positive page sizes fall back to
// DefaultPageSize.
func NewWindow(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize}
}

// PageSize returns the fixed page size.
func (w *Window) PageSize() int {
	return w.pageSize
}

// Len returns the number of visible entries.
func (w *Window) Len() int {
	return w.length
}

// Reset empties the window.
func (w *Window) Reset() {
	w.length = 0
}

// Initialize shows the first page.
func (w *Window) Initialize(total int) {
	w.length = min(w.pageSize, max(total, 0))
}

// HasMore reports whether entries exist past the window.
func (w *Window) HasMore(total int) bool {
	return w.length < total
}

// Advance reveals the next page. It returns false without changing the
// window when nothing is left to reveal.
func (w *Window) Advance(total int) bool {
	if !w.HasMore(total) {
		return false
	}
	w.length = min(w.length+w.pageSize, total)
	return true
}

// Grow widens the window by n, clamped to total. Used when entries are
// inserted at the head without a reload so they stay visible.
func (w *Window) Grow(n, total int) {
	w.length = min(w.length+max(n, 0), max(total, 0))
}

// Removed reconciles the window after the store removed the entry at idx.
// The window shrinks by one only if idx was visible.
func (w *Window) Removed(idx int) {
	if idx >= 0 && idx < w.length {
		w.length--
	}
}

// Contains reports whether store index idx is visible.
func (w *Window) Contains(idx int) bool {
	return idx >= 0 && idx < w.length
}

// Clamp bounds the window to total after the store shrank underneath it.
func (w *Window) Clamp(total int) {
	w.length = min(w.length, max(total, 0))
}
