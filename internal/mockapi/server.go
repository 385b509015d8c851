// Package mockapi serves an in-memory task board comments API. It backs the
// mock-server command and the remote client tests.
package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a bearer token on every request.
	Token string
	// Author is the calling user. Created comments are attributed to it and
	// only its comments may be edited or deleted. Defaults to the first seed
	// author.
	Author comment.Author
	Logger zerolog.Logger
}

// Server is the HTTP handler for the mock API.
type Server struct {
	store    *Store
	opts     Options
	validate *validator.Validate
	router   chi.Router

	mu       sync.Mutex
	failNext int
	failCode int
}

// NewServer creates a server over store.
func NewServer(store *Store, opts Options) *Server {
	if opts.Author.ID == 0 {
		opts.Author = seedAuthors[0]
	}

	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	s := &Server{
		store:    store,
		opts:     opts,
		validate: v,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.authenticate)
	r.Use(s.injectFailures)

	r.Route("/comments", func(r chi.Router) {
		r.Get("/", s.listComments)
		r.Post("/", s.createComment)
		r.Put("/{commentID}", s.updateComment)
		r.Delete("/{commentID}", s.deleteComment)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// FailNext makes the next n requests fail with code.
func (s *Server) FailNext(n, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
	s.failCode = code
}

type listQuery struct {
	CardID int64  `validate:"required,gt=0"`
	Size   int    `validate:"omitempty,gt=0,lte=1000"`
	Cursor *int64 `validate:"omitempty,gt=0"`
}

type updateRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}

type createRequest struct {
	Content     string `json:"content" validate:"required,notblank"`
	CardID      int64  `json:"cardId" validate:"required,gt=0"`
	ColumnID    int64  `json:"columnId" validate:"required,gt=0"`
	DashboardID int64  `json:"dashboardId" validate:"required,gt=0"`
}

type listResponse struct {
	CursorID *int64            `json:"cursorId"`
	Comments []comment.Comment `json:"comments"`
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var lq listQuery
	var err error
	if lq.CardID, err = parseInt(q.Get("cardId")); err != nil {
		writeError(w, http.StatusBadRequest, "cardId must be a number")
		return
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "size must be a number")
			return
		}
		lq.Size = size
	}
	if v := q.Get("cursorId"); v != "" {
		cursor, err := parseInt(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cursorId must be a number")
			return
		}
		lq.Cursor = &cursor
	}
	if err := s.validateStruct(lq); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if lq.Size == 0 {
		lq.Size = 10
	}
	comments, next := s.store.List(lq.CardID, lq.Size, lq.Cursor)
	if comments == nil {
		comments = []comment.Comment{}
	}
	writeJSON(w, http.StatusOK, listResponse{CursorID: next, Comments: comments})
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := s.store.Create(comment.NewComment{
		CardID:      req.CardID,
		ColumnID:    req.ColumnID,
		DashboardID: req.DashboardID,
		Content:     req.Content,
	}, s.opts.Author)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt(chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "comment id must be a number")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	if existing.Author.ID != s.opts.Author.ID {
		writeError(w, http.StatusForbidden, "only the author can edit this comment")
		return
	}

	c, ok := s.store.Update(id, req.Content)
	if !ok {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt(chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "comment id must be a number")
		return
	}

	existing, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	if existing.Author.ID != s.opts.Author.ID {
		writeError(w, http.StatusForbidden, "only the author can delete this comment")
		return
	}

	s.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token != s.opts.Token {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failNext > 0
		code := s.failCode
		if fail {
			s.failNext--
		}
		s.mu.Unlock()

		if fail {
			writeError(w, code, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.opts.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}
