package logging

import "context"

type contextKey string

const (
	cardIDKey    contextKey = "card_id"
	requestIDKey contextKey = "request_id"
)

// WithCardID adds the active card ID to the context.
func WithCardID(ctx context.Context, cardID int64) context.Context {
	return context.WithValue(ctx, cardIDKey, cardID)
}

// WithRequestID adds an outbound request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetCardID retrieves the card ID from the context.
// Returns false if not present.
func GetCardID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(cardIDKey).(int64)
	return id, ok
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
