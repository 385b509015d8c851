package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("api error: %d %s", e.Code, e.Message)
}

// Temporary reports whether retrying the request later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type errorBody struct {
	Message string `json:"message"`
}

func newStatusError(code int, body []byte) *StatusError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return &StatusError{Code: code, Message: eb.Message}
	}
	return &StatusError{Code: code, Message: strings.TrimSpace(string(body))}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
