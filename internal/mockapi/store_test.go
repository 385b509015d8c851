package mockapi

import (
	"testing"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ListNewestFirstWithCursor(t *testing.T) {
	s := NewStore()
	s.Seed(1, 5)
	s.Seed(2, 2)

	page, next := s.List(1, 2, nil)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)
	require.NotNil(t, next)
	assert.Equal(t, int64(4), *next)

	page, next = s.List(1, 2, next)
	assert.Equal(t, int64(3), page[0].ID)
	require.NotNil(t, next)

	page, next = s.List(1, 2, next)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ID)
	assert.Nil(t, next, "last page has no cursor")
}

func TestStore_ListOtherCard(t *testing.T) {
	s := NewStore()
	s.Seed(1, 3)

	page, next := s.List(2, 10, nil)
	assert.Empty(t, page)
	assert.Nil(t, next)
}

func TestStore_Mutations(t *testing.T) {
	s := NewStore()
	s.Seed(1, 2)

	c, ok := s.Update(1, "changed")
	require.True(t, ok)
	assert.Equal(t, "changed", c.Content)

	_, ok = s.Update(42, "x")
	assert.False(t, ok)

	assert.True(t, s.Delete(2))
	assert.False(t, s.Delete(2))

	created := s.Create(comment.NewComment{CardID: 1, Content: "new"}, seedAuthors[0])
	assert.Equal(t, int64(3), created.ID, "ids are never reused")

	page, _ := s.List(1, 0, nil)
	require.Len(t, page, 2)
	assert.Equal(t, created.ID, page[0].ID)
}
