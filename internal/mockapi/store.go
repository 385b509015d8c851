package mockapi

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
)

// Store is an in-memory comment table. Lists are returned newest first.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]comment.Comment
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		comments: make(map[int64]comment.Comment),
		now:      time.Now,
	}
}

var seedAuthors = []comment.Author{
	{ID: 1, Nickname: "mina"},
	{ID: 2, Nickname: "jun", AvatarURL: "https://avatars.example.com/jun.png"},
	{ID: 3, Nickname: "sol"},
}

// Seed adds n comments to cardID, one minute apart, oldest first.
func (s *Store) Seed(cardID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.now().Add(-time.Duration(n) * time.Minute)
	for i := range n {
		s.nextID++
		at := base.Add(time.Duration(i) * time.Minute)
		s.comments[s.nextID] = comment.Comment{
			ID:        s.nextID,
			CardID:    cardID,
			Author:    seedAuthors[i%len(seedAuthors)],
			Content:   fmt.Sprintf("Comment %d on card %d", i+1, cardID),
			CreatedAt: at,
			UpdatedAt: at,
		}
	}
}

// List returns up to size comments for cardID with ids below cursor (when
// set), newest first, and the cursor for the next page.
func (s *Store) List(cardID int64, size int, cursor *int64) ([]comment.Comment, *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []comment.Comment
	for _, c := range s.comments {
		if c.CardID != cardID {
			continue
		}
		if cursor != nil && c.ID >= *cursor {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	if size <= 0 || size >= len(all) {
		return all, nil
	}
	next := all[size-1].ID
	return all[:size], &next
}

// Get returns a comment by id.
func (s *Store) Get(id int64) (comment.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	return c, ok
}

// Update replaces a comment's content.
func (s *Store) Update(id int64, content string) (comment.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return comment.Comment{}, false
	}
	c.Content = content
	c.UpdatedAt = s.now()
	s.comments[id] = c
	return c, true
}

// Delete removes a comment.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return false
	}
	delete(s.comments, id)
	return true
}

// Create adds a comment written by author.
func (s *Store) Create(in comment.NewComment, author comment.Author) comment.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	c := comment.Comment{
		ID:        s.nextID,
		CardID:    in.CardID,
		Author:    author,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.comments[c.ID] = c
	return c
}
