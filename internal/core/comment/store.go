package comment

// Store holds the authoritative comment list for one card. Entries keep the
// order the server delivered them in (newest first) and ids are unique.
//
// Store is not safe for concurrent use; the owning session serializes access.
type Store struct {
	cardID   int64
	comments []Comment
	ids      map[int64]struct{}
}

// NewStore creates an empty store for the given card.
func NewStore(cardID int64) *Store {
	return &Store{
		cardID: cardID,
		ids:    make(map[int64]struct{}),
	}
}

// Reset clears all state and rebinds the store to cardID.
func (s *Store) Reset(cardID int64) {
	s.cardID = cardID
	s.comments = nil
	s.ids = make(map[int64]struct{})
}

// CardID returns the card the store belongs to.
func (s *Store) CardID() int64 {
	return s.cardID
}

// Load replaces the sequence wholesale. Duplicate ids in the input are
// dropped, keeping the first occurrence.
func (s *Store) Load(comments []Comment) {
	s.comments = make([]Comment, 0, len(comments))
	s.ids = make(map[int64]struct{}, len(comments))
	s.appendUnique(comments)
}

// Append adds comments to the tail, skipping ids already present. It
// returns the number of comments added.
func (s *Store) Append(comments []Comment) int {
	return s.appendUnique(comments)
}

// Prepend inserts c at the head. It returns false and leaves the store
// untouched if the id is already present.
func (s *Store) Prepend(c Comment) bool {
	if _, ok := s.ids[c.ID]; ok {
		return false
	}
	s.ids[c.ID] = struct{}{}
	s.comments = append([]Comment{c}, s.comments...)
	return true
}

// ApplyEdit replaces the content of the comment with the given id. It
// returns the index of the edited entry, or -1 if the id is unknown.
func (s *Store) ApplyEdit(id int64, content string) int {
	idx := s.Index(id)
	if idx < 0 {
		return -1
	}
	s.comments[idx].Content = content
	return idx
}

// ApplyDelete removes the comment with the given id. It returns the index the
// entry occupied, or -1 if the id is unknown.
func (s *Store) ApplyDelete(id int64) int {
	idx := s.Index(id)
	if idx < 0 {
		return -1
	}
	s.comments = append(s.comments[:idx], s.comments[idx+1:]...)
	delete(s.ids, id)
	return idx
}

// Index returns the position of id, or -1.
func (s *Store) Index(id int64) int {
	if _, ok := s.ids[id]; !ok {
		return -1
	}
	for i := range s.comments {
		if s.comments[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the comment with the given id.
func (s *Store) Get(id int64) (Comment, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return Comment{}, false
	}
	return s.comments[idx], true
}

// Len returns the number of comments.
func (s *Store) Len() int {
	return len(s.comments)
}

// Slice returns a copy of the first n comments. n is clamped to Len.
func (s *Store) Slice(n int) []Comment {
	n = min(max(n, 0), len(s.comments))
	out := make([]Comment, n)
	copy(out, s.comments[:n])
	return out
}

// All returns a copy of every comment.
func (s *Store) All() []Comment {
	return s.Slice(len(s.comments))
}

// Last returns the tail entry, used as the cursor for the next page.
func (s *Store) Last() (Comment, bool) {
	if len(s.comments) == 0 {
		return Comment{}, false
	}
	return s.comments[len(s.comments)-1], true
}

func (s *Store) appendUnique(comments []Comment) int {
	added := 0
	for _, c := range comments {
		if _, ok := s.ids[c.ID]; ok {
			continue
		}
		s.ids[c.ID] = struct{}{}
		s.comments = append(s.comments, c)
		added++
	}
	return added
}
