package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
)

// fakeSource is an in-memory comment.Source. Comments are kept newest
// first. When gate is set, calls block until a value is received from it
// or the context ends.
type fakeSource struct {
	mu       sync.Mutex
	comments map[int64][]comment.Comment
	nextID   int64

	gate    chan struct{}
	started chan struct{}

	fetchErr  error
	updateErr error
	deleteErr error
	createErr error

	fetches []comment.FetchRequest
	updates int
	deletes int
	creates int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		comments: make(map[int64][]comment.Comment),
		nextID:   1000,
		started:  make(chan struct{}, 16),
	}
}

// seed adds n comments to cardID with ids n..1 so the first is newest.
func (f *fakeSource) seed(cardID int64, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cs := make([]comment.Comment, 0, n)
	for i := n; i >= 1; i-- {
		cs = append(cs, comment.Comment{
			ID:        int64(i),
			CardID:    cardID,
			Author:    comment.Author{ID: 1, Nickname: "tester"},
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	f.comments[cardID] = cs
}

func (f *fakeSource) wait(ctx context.Context) error {
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.mu.Unlock()

	select {
	case started <- struct{}{}:
	default:
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) FetchComments(ctx context.Context, req comment.FetchRequest) (comment.Page, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, req)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return comment.Page{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return comment.Page{}, f.fetchErr
	}

	all := f.comments[req.CardID]
	start := 0
	if req.Cursor != nil {
		for i, c := range all {
			if c.ID < *req.Cursor {
				start = i
				break
			}
			start = len(all)
		}
	}
	end := min(start+req.Size, len(all))

	page := comment.Page{Comments: append([]comment.Comment(nil), all[start:end]...)}
	if end < len(all) {
		cursor := all[end-1].ID
		page.NextCursor = &cursor
	}
	return page, nil
}

func (f *fakeSource) UpdateComment(ctx context.Context, id int64, content string) (comment.Comment, error) {
	if err := f.wait(ctx); err != nil {
		return comment.Comment{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++

	if f.updateErr != nil {
		return comment.Comment{}, f.updateErr
	}
	for card, cs := range f.comments {
		for i := range cs {
			if cs[i].ID == id {
				f.comments[card][i].Content = content
				return f.comments[card][i], nil
			}
		}
	}
	return comment.Comment{}, fmt.Errorf("comment %d: not found", id)
}

func (f *fakeSource) DeleteComment(ctx context.Context, id int64) error {
	if err := f.wait(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++

	if f.deleteErr != nil {
		return f.deleteErr
	}
	for card, cs := range f.comments {
		for i := range cs {
			if cs[i].ID == id {
				f.comments[card] = append(cs[:i:i], cs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("comment %d: not found", id)
}

func (f *fakeSource) CreateComment(ctx context.Context, in comment.NewComment) (comment.Comment, error) {
	if err := f.wait(ctx); err != nil {
		return comment.Comment{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++

	if f.createErr != nil {
		return comment.Comment{}, f.createErr
	}
	f.nextID++
	c := comment.Comment{
		ID:      f.nextID,
		CardID:  in.CardID,
		Author:  comment.Author{ID: 1, Nickname: "tester"},
		Content: in.Content,
	}
	f.comments[in.CardID] = append([]comment.Comment{c}, f.comments[in.CardID]...)
	return c, nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}
