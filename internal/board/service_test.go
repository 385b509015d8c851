package board

import (
	"context"
	"errors"
	"testing"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(paging config.Paging) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Comments.Paging = paging
	return &cfg
}

func TestService_List(t *testing.T) {
	src := newFakeSource()
	src.seed(1, 7)

	t.Run("client paging fetches once", func(t *testing.T) {
		svc := NewService(src, testConfig(config.PagingClient))

		cs, err := svc.List(context.Background(), 1, 0)
		require.NoError(t, err)
		assert.Len(t, cs, 7)
		assert.Equal(t, int64(7), cs[0].ID)
	})

	t.Run("cursor paging follows pages up to the limit", func(t *testing.T) {
		svc := NewService(src, testConfig(config.PagingCursor))
		before := src.fetchCount()

		cs, err := svc.List(context.Background(), 1, 5)
		require.NoError(t, err)
		require.Len(t, cs, 5)
		assert.Equal(t, int64(3), cs[4].ID)
		assert.Equal(t, 2, src.fetchCount()-before)
	})

	t.Run("invalid card", func(t *testing.T) {
		svc := NewService(src, testConfig(config.PagingClient))
		_, err := svc.List(context.Background(), 0, 0)
		assert.ErrorIs(t, err, ErrNoCard)
	})
}

func TestService_ListError(t *testing.T) {
	src := newFakeSource()
	src.fetchErr = errors.New("down")
	svc := NewService(src, testConfig(config.PagingClient))

	_, err := svc.List(context.Background(), 3, 0)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, int64(3), fetchErr.CardID)
}

func TestService_Mutations(t *testing.T) {
	src := newFakeSource()
	src.seed(1, 3)
	svc := NewService(src, testConfig(config.PagingClient))
	ctx := context.Background()

	_, err := svc.Edit(ctx, 2, "  ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	c, err := svc.Edit(ctx, 2, "changed")
	require.NoError(t, err)
	assert.Equal(t, "changed", c.Content)

	require.NoError(t, svc.Delete(ctx, 1))

	_, err = svc.Post(ctx, comment.NewComment{Content: "hi"})
	assert.ErrorIs(t, err, ErrNoCard)

	created, err := svc.Post(ctx, comment.NewComment{CardID: 1, Content: " hi "})
	require.NoError(t, err)
	assert.Equal(t, "hi", created.Content)

	cs, err := svc.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, cs, 3)

	src.deleteErr = errors.New("nope")
	var mutErr *MutationError
	require.ErrorAs(t, svc.Delete(ctx, 3), &mutErr)
	assert.Equal(t, OpDelete, mutErr.Op)
}
