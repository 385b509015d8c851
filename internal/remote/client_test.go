package remote

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/mockapi"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBackend(t *testing.T, token string) (*mockapi.Server, *httptest.Server) {
	t.Helper()
	store := mockapi.NewStore()
	store.Seed(1, 7)
	api := mockapi.NewServer(store, mockapi.Options{Token: token, Logger: zerolog.Nop()})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func newTestClient(t *testing.T, baseURL, token string) *Client {
	t.Helper()
	c, err := New(Options{
		BaseURL: baseURL,
		Token:   token,
		Timeout: 5 * time.Second,
		Breaker: BreakerOptions{MaxRequests: 1, Timeout: time.Minute, MinRequests: 3, FailureRatio: 0.5},
	})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestClient_FetchComments(t *testing.T) {
	_, srv := newMockBackend(t, "tok")
	c := newTestClient(t, srv.URL, "tok")
	ctx := context.Background()

	page, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 100})
	require.NoError(t, err)
	require.Len(t, page.Comments, 7)
	assert.Equal(t, int64(7), page.Comments[0].ID, "newest first")
	assert.Nil(t, page.NextCursor)
	assert.Equal(t, int64(1), page.Comments[0].CardID)
	assert.NotEmpty(t, page.Comments[0].Author.Nickname)
	assert.False(t, page.Comments[0].CreatedAt.IsZero())

	t.Run("cursor pages", func(t *testing.T) {
		first, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 3})
		require.NoError(t, err)
		require.NotNil(t, first.NextCursor)

		second, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 3, Cursor: first.NextCursor})
		require.NoError(t, err)
		require.Len(t, second.Comments, 3)
		assert.Equal(t, int64(4), second.Comments[0].ID)
	})
}

func TestClient_Unauthorized(t *testing.T) {
	_, srv := newMockBackend(t, "tok")
	c := newTestClient(t, srv.URL, "wrong")

	_, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 10})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "invalid or missing token", se.Message)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestClient_Mutations(t *testing.T) {
	_, srv := newMockBackend(t, "")
	c := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	updated, err := c.UpdateComment(ctx, 1, "edited")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "edited", updated.Content)

	_, err = c.UpdateComment(ctx, 2, "not mine")
	assert.True(t, IsStatus(err, http.StatusForbidden))

	created, err := c.CreateComment(ctx, comment.NewComment{CardID: 1, ColumnID: 2, DashboardID: 3, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", created.Content)

	require.NoError(t, c.DeleteComment(ctx, created.ID))
	assert.True(t, IsStatus(c.DeleteComment(ctx, created.ID), http.StatusNotFound))
}

func TestClient_SendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cursorId":null,"comments":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "secret")
	_, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 1})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 36, "uuid request id")
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_MissingCommentsFieldIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cursorId":null}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "")
	page, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 10})

	require.NoError(t, err)
	assert.Empty(t, page.Comments)
	assert.Nil(t, page.NextCursor)
}

func TestClient_WrongShapedListIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
		warn string
	}{
		{name: "bare array", body: `[{"id":1}]`, warn: "not an object"},
		{name: "comments is an object", body: `{"cursorId":3,"comments":{"id":1}}`, warn: "unexpected shape"},
		{name: "comments is a string", body: `{"comments":"none"}`, warn: "unexpected shape"},
		{name: "null body", body: `null`, warn: "no comments field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			var logs bytes.Buffer
			c := newTestClient(t, srv.URL, "")
			c.log = zerolog.New(&logs)

			page, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 10})
			require.NoError(t, err)
			assert.Empty(t, page.Comments)
			assert.Nil(t, page.NextCursor)
			assert.Contains(t, logs.String(), `"level":"warn"`)
			assert.Contains(t, logs.String(), tt.warn)
		})
	}
}

func TestClient_MalformedCursorIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cursorId":"next","comments":[{"id":9,"content":"hi"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "")
	page, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 10})

	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, int64(9), page.Comments[0].ID)
	assert.Nil(t, page.NextCursor)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, "")
	_, err := c.FetchComments(context.Background(), comment.FetchRequest{CardID: 1, Size: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode comment list")
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	api, srv := newMockBackend(t, "")
	c := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	api.FailNext(3, http.StatusInternalServerError)
	for range 3 {
		_, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 1})
		require.True(t, IsStatus(err, http.StatusInternalServerError))
	}

	_, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 1})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	api, srv := newMockBackend(t, "")
	c := newTestClient(t, srv.URL, "")
	ctx := context.Background()

	api.FailNext(5, http.StatusNotFound)
	for range 5 {
		_, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 1})
		require.True(t, IsStatus(err, http.StatusNotFound))
	}

	_, err := c.FetchComments(ctx, comment.FetchRequest{CardID: 1, Size: 1})
	assert.NoError(t, err)
}

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(context.Canceled))
	assert.True(t, isSuccessful(&StatusError{Code: http.StatusForbidden}))
	assert.False(t, isSuccessful(&StatusError{Code: http.StatusBadGateway}))
	assert.False(t, isSuccessful(&StatusError{Code: http.StatusTooManyRequests}))
	assert.False(t, isSuccessful(errors.New("connection reset")))
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "api error: 404 Not Found", (&StatusError{Code: 404}).Error())
	assert.Equal(t, "api error: 400 bad", (&StatusError{Code: 400, Message: "bad"}).Error())
}
