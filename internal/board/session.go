package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/eventbus"
	"github.com/colonyops/taskboard/internal/core/logging"
	"github.com/rs/zerolog"
)

// Card identifies the card whose comments a session shows. ColumnID and
// DashboardID are only needed to post new comments.
type Card struct {
	ID          int64
	ColumnID    int64
	DashboardID int64
}

// SessionOptions configures a Session.
type SessionOptions struct {
	PageSize int
	// FetchSize is the page size sent to the source by Load in client paging
	// mode. Cursor mode always fetches PageSize.
	FetchSize int
	Cursor    bool
	Timeout   time.Duration

	// Outside reports interactions outside an open menu. May be nil.
	Outside comment.OutsideSource
	// Bus receives lifecycle events. May be nil.
	Bus *eventbus.EventBus
}

// Ticket identifies one activation of a card. Load only applies results
// while the ticket's activation is current.
type Ticket struct {
	card *cardState
}

// CardID returns the card the ticket was issued for.
func (t Ticket) CardID() int64 {
	if t.card == nil {
		return 0
	}
	return t.card.card.ID
}

// cardState is everything that belongs to one activated card. Activate
// swaps it out wholesale; work issued against an old cardState finds it is
// no longer current and discards its result.
type cardState struct {
	card   Card
	ctx    context.Context
	cancel context.CancelFunc

	store     *comment.Store
	window    *comment.Window
	trigger   *comment.Trigger
	selection *comment.Selection

	inflight map[int64]struct{}
	posting  bool

	loaded    bool
	err       error
	cursor    *int64
	exhausted bool
}

// Session is the comment engine for a card detail view. It owns the
// comment store for the active card, the visible window over it, the load
// guard, the selection state machine, and the per-id mutation bookkeeping.
//
// Session is safe for concurrent use. Calls to the source are made without
// holding the session lock.
type Session struct {
	src  comment.Source
	opts SessionOptions
	log  zerolog.Logger

	mu   sync.Mutex
	card *cardState
}

// NewSession creates a session with no active card.
func NewSession(src comment.Source, opts SessionOptions) *Session {
	if opts.PageSize <= 0 {
		opts.PageSize = comment.DefaultPageSize
	}
	if opts.FetchSize < opts.PageSize {
		opts.FetchSize = opts.PageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Session{
		src:  src,
		opts: opts,
		log:  logging.Component("board"),
	}
}

// Activate switches the session to card. All state from the previous card
// is discarded and its in-flight requests are cancelled. The returned
// ticket is passed to Load to fetch the card's comments.
func (s *Session) Activate(card Card) Ticket {
	ctx, cancel := context.WithCancel(context.Background())
	cs := &cardState{
		card:     card,
		ctx:      ctx,
		cancel:   cancel,
		store:    comment.NewStore(card.ID),
		window:   comment.NewWindow(s.opts.PageSize),
		trigger:  comment.NewTrigger(),
		inflight: make(map[int64]struct{}),
	}
	cs.selection = comment.NewSelection(s.opts.Outside, func() { s.dismissMenu(cs) })

	s.mu.Lock()
	prev := s.card
	s.card = cs
	if prev != nil {
		prev.selection.Close()
	}
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}

	s.log.Debug().Int64("card_id", card.ID).Msg("card activated")
	if s.opts.Bus != nil {
		s.opts.Bus.PublishCardActivated(eventbus.CardActivatedPayload{CardID: card.ID})
	}

	return Ticket{card: cs}
}

// Close cancels the active card's requests and drops its state.
func (s *Session) Close() {
	s.mu.Lock()
	cs := s.card
	s.card = nil
	if cs != nil {
		cs.selection.Close()
	}
	s.mu.Unlock()

	if cs != nil {
		cs.cancel()
	}
}

// Load fetches the comments for the ticket's card and shows the first page.
// It returns ErrStale if another card was activated while the request was
// in flight, and ErrBusy if a load for this card is already running.
func (s *Session) Load(ctx context.Context, t Ticket) error {
	cs := t.card
	if cs == nil {
		return ErrNoCard
	}

	s.mu.Lock()
	if s.card != cs {
		s.mu.Unlock()
		return ErrStale
	}
	if !cs.trigger.Begin() {
		s.mu.Unlock()
		return ErrBusy
	}
	req := comment.FetchRequest{CardID: cs.card.ID, Size: s.opts.FetchSize}
	if s.opts.Cursor {
		req.Size = s.opts.PageSize
	}
	s.mu.Unlock()

	page, err := s.fetch(ctx, cs, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer cs.trigger.End()

	if s.card != cs {
		s.log.Debug().Int64("card_id", cs.card.ID).Msg("discarding stale comment page")
		return ErrStale
	}

	if err != nil {
		cs.err = err
		return s.fetchFailed(ctx, cs, err)
	}

	cs.store.Load(page.Comments)
	cs.window.Initialize(cs.store.Len())
	cs.cursor = page.NextCursor
	cs.exhausted = page.NextCursor == nil || len(page.Comments) == 0
	cs.loaded = true
	cs.err = nil

	s.loaded(cs)
	return nil
}

// MoreRequest is a page advance whose load guard is already held. Pass it
// to FinishMore, which applies the page and releases the guard.
type MoreRequest struct {
	card *cardState
	done bool
}

// RequestMore advances the window by one page. It is the explicit "show
// more" action and does not depend on sentinel visibility. It reports
// whether the window grew.
//
// A request made while a load is running returns ErrBusy and is dropped.
// In cursor mode the next page is fetched from the source under the same
// guard.
func (s *Session) RequestMore(ctx context.Context) (bool, error) {
	m, err := s.BeginMore()
	if err != nil || m == nil {
		return false, err
	}
	return s.FinishMore(ctx, m)
}

// BeginMore takes the load guard for an explicit "show more" and returns
// the request to finish later. It returns ErrBusy while a load is running
// and a nil request when there is nothing more to show.
//
// Callers that run the advance asynchronously call BeginMore first, so a
// second request issued before the first one runs is already rejected.
func (s *Session) BeginMore() (*MoreRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.card
	if cs == nil {
		return nil, ErrNoCard
	}
	if !cs.trigger.ShouldAdvanceOnClick(s.hasMore(cs)) {
		if cs.trigger.Loading() {
			return nil, ErrBusy
		}
		return nil, nil
	}
	cs.trigger.Begin()
	return &MoreRequest{card: cs}, nil
}

// SetSentinelVisible records whether the sentinel below the last visible
// comment is on screen. When that should reveal more comments it takes the
// load guard and returns the request to pass to FinishMore; otherwise it
// returns nil.
func (s *Session) SetSentinelVisible(visible bool) *MoreRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.card
	if cs == nil {
		return nil
	}
	cs.trigger.SetSentinelVisible(visible)
	if !cs.trigger.ShouldAdvance(s.hasMore(cs)) {
		return nil
	}
	cs.trigger.Begin()
	return &MoreRequest{card: cs}
}

// FinishMore performs a request taken by BeginMore or SetSentinelVisible
// and releases its guard. It reports whether the window grew, and returns
// ErrStale if another card was activated in the meantime. Finishing the
// same request twice is a no-op.
func (s *Session) FinishMore(ctx context.Context, m *MoreRequest) (bool, error) {
	if m == nil {
		return false, nil
	}

	s.mu.Lock()
	if m.done {
		s.mu.Unlock()
		return false, nil
	}
	m.done = true
	cs := m.card

	if s.card != cs {
		cs.trigger.End()
		s.mu.Unlock()
		return false, ErrStale
	}

	// Local data covers the next page: no network, the guard only
	// serializes advance calls.
	if cs.window.HasMore(cs.store.Len()) {
		defer s.mu.Unlock()
		defer cs.trigger.End()
		advanced := cs.window.Advance(cs.store.Len())
		s.loaded(cs)
		return advanced, nil
	}
	if !s.hasMore(cs) {
		cs.trigger.End()
		s.mu.Unlock()
		return false, nil
	}

	req := comment.FetchRequest{CardID: cs.card.ID, Size: s.opts.PageSize, Cursor: cs.cursor}
	s.mu.Unlock()

	page, err := s.fetch(ctx, cs, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer cs.trigger.End()

	if s.card != cs {
		s.log.Debug().Int64("card_id", cs.card.ID).Msg("discarding stale comment page")
		return false, ErrStale
	}

	if err != nil {
		return false, s.fetchFailed(ctx, cs, err)
	}

	added := cs.store.Append(page.Comments)
	cs.cursor = page.NextCursor
	cs.exhausted = page.NextCursor == nil || added == 0

	before := cs.window.Len()
	cs.window.Advance(cs.store.Len())
	s.loaded(cs)
	return cs.window.Len() > before, nil
}

// CardID returns the active card's id, or 0 when no card is active.
func (s *Session) CardID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == nil {
		return 0
	}
	return s.card.card.ID
}

// Visible returns a copy of the comments in the window, newest first.
func (s *Session) Visible() []comment.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == nil {
		return nil
	}
	return s.card.store.Slice(s.card.window.Len())
}

// HasMore reports whether RequestMore could show more comments.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == nil {
		return false
	}
	return s.hasMore(s.card)
}

// IsLoading reports whether a fetch or advance is running.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.card != nil && s.card.trigger.Loading()
}

// Selection returns the selection state, the id it refers to, and the edit
// draft.
func (s *Session) Selection() (comment.SelectionState, int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == nil {
		return comment.StateClosed, 0, ""
	}
	sel := s.card.selection
	switch sel.State() {
	case comment.StateMenuOpen:
		id, _ := sel.MenuOpenFor()
		return sel.State(), id, ""
	case comment.StateEditing:
		id, _ := sel.Editing()
		return sel.State(), id, sel.Draft()
	default:
		return comment.StateClosed, 0, ""
	}
}

// OpenMenu opens the context menu for id.
func (s *Session) OpenMenu(id int64) error {
	return s.withComment(id, func(cs *cardState, _ comment.Comment) error {
		cs.selection.OpenMenu(id)
		return nil
	})
}

// ToggleMenu opens id's menu, or closes it when it is already open.
func (s *Session) ToggleMenu(id int64) error {
	return s.withComment(id, func(cs *cardState, _ comment.Comment) error {
		cs.selection.ToggleMenu(id)
		return nil
	})
}

// CloseMenu closes any open menu.
func (s *Session) CloseMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card != nil {
		s.card.selection.CloseMenu()
	}
}

// StartEdit puts id into inline-edit mode with its current content as the
// draft. Any open menu is closed.
func (s *Session) StartEdit(id int64) error {
	return s.withComment(id, func(cs *cardState, c comment.Comment) error {
		if _, busy := cs.inflight[id]; busy {
			return ErrMutationInFlight
		}
		cs.selection.StartEdit(id, c.Content)
		return nil
	})
}

// SetDraft updates the edit draft. It is ignored when nothing is being
// edited.
func (s *Session) SetDraft(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card != nil {
		s.card.selection.SetDraft(content)
	}
}

// CancelEdit leaves inline-edit mode and discards the draft.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card != nil && s.card.selection.State() == comment.StateEditing {
		s.card.selection.Close()
	}
}

// CommitEdit sends content as the new text for id. Whitespace-only content
// is rejected with ErrEmptyContent without contacting the source and the
// edit stays open.
//
// On success the comment is updated in place and the selection closes. On
// failure the edit is reverted: the draft is discarded, the selection
// closes, and the stored comment is left untouched.
func (s *Session) CommitEdit(ctx context.Context, id int64, content string) (comment.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return comment.Comment{}, ErrEmptyContent
	}

	s.mu.Lock()
	cs, err := s.beginMutation(id)
	s.mu.Unlock()
	if err != nil {
		return comment.Comment{}, err
	}

	updated, err := s.update(ctx, cs, id, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(cs.inflight, id)

	if s.card != cs {
		return comment.Comment{}, ErrStale
	}

	if err != nil {
		if cs.selection.IsEditing(id) {
			cs.selection.Close()
		}
		return comment.Comment{}, s.mutationFailed(ctx, cs, OpEdit, id, err)
	}

	if updated.ID == 0 {
		updated, _ = cs.store.Get(id)
		updated.Content = content
	}
	s.reconcile(cs, mutation{op: OpEdit, id: id, content: updated.Content})

	if s.opts.Bus != nil {
		s.opts.Bus.PublishCommentEdited(eventbus.CommentEditedPayload{Comment: updated})
	}
	return updated, nil
}

// RequestDelete deletes id. The menu for id is closed as soon as the
// request is dispatched. On failure the comment stays where it was.
func (s *Session) RequestDelete(ctx context.Context, id int64) error {
	s.mu.Lock()
	cs, err := s.beginMutation(id)
	if err == nil {
		cs.selection.Forget(id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	err = s.delete(ctx, cs, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(cs.inflight, id)

	if s.card != cs {
		return ErrStale
	}

	if err != nil {
		return s.mutationFailed(ctx, cs, OpDelete, id, err)
	}

	s.reconcile(cs, mutation{op: OpDelete, id: id})

	if s.opts.Bus != nil {
		s.opts.Bus.PublishCommentDeleted(eventbus.CommentDeletedPayload{CardID: cs.card.ID, CommentID: id})
	}
	return nil
}

// Post creates a comment on the active card. The new comment is shown at
// the head of the list and the window grows by one so nothing that was
// visible scrolls out.
func (s *Session) Post(ctx context.Context, content string) (comment.Comment, error) {
	s.mu.Lock()
	cs := s.card
	if cs == nil {
		s.mu.Unlock()
		return comment.Comment{}, ErrNoCard
	}
	in := comment.NewComment{
		CardID:      cs.card.ID,
		ColumnID:    cs.card.ColumnID,
		DashboardID: cs.card.DashboardID,
		Content:     strings.TrimSpace(content),
	}
	if err := in.Validate(); err != nil {
		s.mu.Unlock()
		return comment.Comment{}, err
	}
	if cs.posting {
		s.mu.Unlock()
		return comment.Comment{}, ErrMutationInFlight
	}
	cs.posting = true
	s.mu.Unlock()

	created, err := s.create(ctx, cs, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	cs.posting = false

	if s.card != cs {
		return comment.Comment{}, ErrStale
	}

	if err != nil {
		return comment.Comment{}, s.mutationFailed(ctx, cs, OpPost, 0, err)
	}

	s.reconcile(cs, mutation{op: OpPost, comment: created})

	if s.opts.Bus != nil {
		s.opts.Bus.PublishCommentPosted(eventbus.CommentPostedPayload{Comment: created})
	}
	return created, nil
}

// Snapshot is a consistent view of the session for rendering.
type Snapshot struct {
	CardID   int64
	Comments []comment.Comment
	Total    int
	HasMore  bool
	Loading  bool
	Loaded   bool
	Err      error

	State comment.SelectionState
	// SelectedID is the id whose menu is open or which is being edited.
	SelectedID int64
	Draft      string
	InFlight   map[int64]bool
}

// Snapshot returns the current state in one locked read.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.card
	if cs == nil {
		return Snapshot{}
	}

	snap := Snapshot{
		CardID:   cs.card.ID,
		Comments: cs.store.Slice(cs.window.Len()),
		Total:    cs.store.Len(),
		HasMore:  s.hasMore(cs),
		Loading:  cs.trigger.Loading(),
		Loaded:   cs.loaded,
		Err:      cs.err,
		State:    cs.selection.State(),
		Draft:    cs.selection.Draft(),
	}
	switch snap.State {
	case comment.StateMenuOpen:
		snap.SelectedID, _ = cs.selection.MenuOpenFor()
	case comment.StateEditing:
		snap.SelectedID, _ = cs.selection.Editing()
	}
	if len(cs.inflight) > 0 {
		snap.InFlight = make(map[int64]bool, len(cs.inflight))
		for id := range cs.inflight {
			snap.InFlight[id] = true
		}
	}
	return snap
}

type mutation struct {
	op      string
	id      int64
	content string
	comment comment.Comment
}

// reconcile applies a confirmed mutation to the store and keeps the window
// and selection consistent with it. Callers hold s.mu.
func (s *Session) reconcile(cs *cardState, m mutation) {
	switch m.op {
	case OpEdit:
		cs.store.ApplyEdit(m.id, m.content)
		cs.selection.Forget(m.id)
	case OpDelete:
		idx := cs.store.ApplyDelete(m.id)
		cs.window.Removed(idx)
		cs.selection.Forget(m.id)
	case OpPost:
		if cs.store.Prepend(m.comment) {
			cs.window.Grow(1, cs.store.Len())
		}
	}
	cs.window.Clamp(cs.store.Len())
}

// beginMutation marks id as in flight on the active card. Callers hold s.mu.
func (s *Session) beginMutation(id int64) (*cardState, error) {
	cs := s.card
	if cs == nil {
		return nil, ErrNoCard
	}
	if _, ok := cs.store.Get(id); !ok {
		return nil, ErrNotFound
	}
	if _, busy := cs.inflight[id]; busy {
		return nil, ErrMutationInFlight
	}
	cs.inflight[id] = struct{}{}
	return cs, nil
}

func (s *Session) withComment(id int64, fn func(cs *cardState, c comment.Comment) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.card
	if cs == nil {
		return ErrNoCard
	}
	c, ok := cs.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	return fn(cs, c)
}

// dismissMenu handles an outside interaction for cs's open menu.
func (s *Session) dismissMenu(cs *cardState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.card == cs {
		cs.selection.CloseMenu()
	}
}

func (s *Session) hasMore(cs *cardState) bool {
	if cs.window.HasMore(cs.store.Len()) {
		return true
	}
	return s.opts.Cursor && cs.loaded && !cs.exhausted
}

// loaded publishes the current window size. Callers hold s.mu.
func (s *Session) loaded(cs *cardState) {
	if s.opts.Bus == nil {
		return
	}
	s.opts.Bus.PublishCommentsLoaded(eventbus.CommentsLoadedPayload{
		CardID:  cs.card.ID,
		Count:   cs.store.Len(),
		Visible: cs.window.Len(),
	})
}

func (s *Session) fetchFailed(ctx context.Context, cs *cardState, err error) error {
	ctx = logging.WithCardID(ctx, cs.card.ID)
	s.log.Error().Ctx(ctx).Err(err).Msg("failed to fetch comments")
	if s.opts.Bus != nil {
		s.opts.Bus.PublishCommentsLoadFailed(eventbus.CommentsLoadFailedPayload{CardID: cs.card.ID, Err: err})
	}
	return &FetchError{CardID: cs.card.ID, Err: err}
}

func (s *Session) mutationFailed(ctx context.Context, cs *cardState, op string, id int64, err error) error {
	ctx = logging.WithCardID(ctx, cs.card.ID)
	s.log.Error().Ctx(ctx).Err(err).
		Int64("comment_id", id).
		Str("op", op).
		Msg("comment mutation failed")
	if s.opts.Bus != nil {
		s.opts.Bus.PublishCommentMutationFailed(eventbus.CommentMutationFailedPayload{
			CardID:    cs.card.ID,
			CommentID: id,
			Op:        op,
			Err:       err,
		})
	}
	return &MutationError{Op: op, CommentID: id, Err: err}
}

// requestContext bounds a source call by the configured timeout and by the
// lifetime of cs's activation.
func (s *Session) requestContext(ctx context.Context, cs *cardState) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	stop := context.AfterFunc(cs.ctx, cancel)
	ctx = logging.WithCardID(ctx, cs.card.ID)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *Session) fetch(ctx context.Context, cs *cardState, req comment.FetchRequest) (comment.Page, error) {
	ctx, cancel := s.requestContext(ctx, cs)
	defer cancel()

	page, err := s.src.FetchComments(ctx, req)
	if err != nil && errors.Is(cs.ctx.Err(), context.Canceled) {
		s.log.Debug().Ctx(ctx).Err(err).Msg("fetch cancelled by card change")
	}
	return page, err
}

func (s *Session) update(ctx context.Context, cs *cardState, id int64, content string) (comment.Comment, error) {
	ctx, cancel := s.requestContext(ctx, cs)
	defer cancel()
	return s.src.UpdateComment(ctx, id, content)
}

func (s *Session) delete(ctx context.Context, cs *cardState, id int64) error {
	ctx, cancel := s.requestContext(ctx, cs)
	defer cancel()
	return s.src.DeleteComment(ctx, id)
}

func (s *Session) create(ctx context.Context, cs *cardState, in comment.NewComment) (comment.Comment, error) {
	ctx, cancel := s.requestContext(ctx, cs)
	defer cancel()
	return s.src.CreateComment(ctx, in)
}
