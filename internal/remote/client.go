// Package remote implements comment.Source against the task board REST API.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/logging"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const userAgent = "taskboard"

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker BreakerOptions

	// HTTPClient overrides the default client. Its timeout is left alone.
	HTTPClient *http.Client
}

// Client talks to the comments endpoints of the task board API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

var _ comment.Source = (*Client)(nil)

// New creates a Client. BaseURL must include any path prefix, for example
// "https://api.example.com/7-2".
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	log := logging.Component("remote")

	return &Client{
		baseURL: u.String(),
		token:   opts.Token,
		http:    httpClient,
		breaker: newBreaker(opts.Breaker, log),
		log:     log,
	}, nil
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// FetchComments lists comments for a card.
func (c *Client) FetchComments(ctx context.Context, req comment.FetchRequest) (comment.Page, error) {
	q := url.Values{}
	q.Set("cardId", strconv.FormatInt(req.CardID, 10))
	if req.Size > 0 {
		q.Set("size", strconv.Itoa(req.Size))
	}
	if req.Cursor != nil {
		q.Set("cursorId", strconv.FormatInt(*req.Cursor, 10))
	}

	body, err := c.do(ctx, http.MethodGet, "/comments?"+q.Encode(), nil)
	if err != nil {
		return comment.Page{}, err
	}

	return c.decodeCommentList(ctx, req.CardID, body)
}

// decodeCommentList reads a {"cursorId", "comments"} body. Text that is not
// JSON is an error. JSON of the wrong shape, such as a bare array or a
// comments field that is not a list, is logged and read as an empty page.
func (c *Client) decodeCommentList(ctx context.Context, cardID int64, body []byte) (comment.Page, error) {
	if !json.Valid(body) {
		return comment.Page{}, errors.New("decode comment list: response is not valid JSON")
	}

	warn := func(err error, msg string) (comment.Page, error) {
		c.log.Warn().Ctx(ctx).Err(err).Int64("card_id", cardID).Msg(msg)
		return comment.Page{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return warn(err, "comment list response is not an object, treating as empty")
	}

	list, ok := raw["comments"]
	if !ok {
		return warn(nil, "comment list response has no comments field, treating as empty")
	}

	var page comment.Page
	if err := json.Unmarshal(list, &page.Comments); err != nil {
		return warn(err, "comment list has an unexpected shape, treating as empty")
	}
	if cur, ok := raw["cursorId"]; ok {
		if err := json.Unmarshal(cur, &page.NextCursor); err != nil {
			c.log.Warn().Ctx(ctx).Err(err).Int64("card_id", cardID).Msg("ignoring malformed cursorId")
			page.NextCursor = nil
		}
	}
	return page, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, id int64, content string) (comment.Comment, error) {
	body, err := c.do(ctx, http.MethodPut, "/comments/"+strconv.FormatInt(id, 10), updateCommentRequest{Content: content})
	if err != nil {
		return comment.Comment{}, err
	}

	var out comment.Comment
	if err := json.Unmarshal(body, &out); err != nil {
		return comment.Comment{}, fmt.Errorf("decode comment: %w", err)
	}
	return out, nil
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/comments/"+strconv.FormatInt(id, 10), nil)
	return err
}

// CreateComment posts a new comment.
func (c *Client) CreateComment(ctx context.Context, in comment.NewComment) (comment.Comment, error) {
	body, err := c.do(ctx, http.MethodPost, "/comments", in)
	if err != nil {
		return comment.Comment{}, err
	}

	var out comment.Comment
	if err := json.Unmarshal(body, &out); err != nil {
		return comment.Comment{}, fmt.Errorf("decode comment: %w", err)
	}
	return out, nil
}

// do sends one request through the circuit breaker and returns the response
// body for 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	out, err := c.breaker.Execute(func() (any, error) {
		return c.send(ctx, method, path, requestID, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s %s: api unavailable: %w", method, path, err)
		}
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) send(ctx context.Context, method, path, requestID string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Ctx(ctx).Err(err).Msg("close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.log.Debug().Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}
	return body, nil
}
