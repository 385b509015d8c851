package comment

// Trigger is the load state for one card. It decides when the sentinel at
// the bottom of the list should reveal more comments and guards against
// re-entrant advance or fetch requests.
//
// A Trigger belongs to a single card session; the session replaces it on
// card change, so a late End from a previous card cannot release the new
// card's guard.
type Trigger struct {
	loading         bool
	sentinelVisible bool
}

// NewTrigger returns an idle trigger.
func NewTrigger() *Trigger {
	return &Trigger{}
}

// Loading reports whether work is in progress.
func (t *Trigger) Loading() bool {
	return t.loading
}

// SetSentinelVisible records whether the sentinel is on screen.
func (t *Trigger) SetSentinelVisible(visible bool) {
	t.sentinelVisible = visible
}

// SentinelVisible reports the last recorded sentinel visibility.
func (t *Trigger) SentinelVisible() bool {
	return t.sentinelVisible
}

// ShouldAdvance reports whether a visible sentinel should request more.
func (t *Trigger) ShouldAdvance(hasMore bool) bool {
	return t.sentinelVisible && hasMore && !t.loading
}

// ShouldAdvanceOnClick is ShouldAdvance for an explicit user action, which
// does not depend on sentinel visibility.
func (t *Trigger) ShouldAdvanceOnClick(hasMore bool) bool {
	return hasMore && !t.loading
}

// Begin acquires the guard. It returns false if work is already in
// progress; the caller must drop the request rather than queue it.
func (t *Trigger) Begin() bool {
	if t.loading {
		return false
	}
	t.loading = true
	return true
}

// End releases the guard. Callers defer it right after a successful Begin.
func (t *Trigger) End() {
	t.loading = false
}
