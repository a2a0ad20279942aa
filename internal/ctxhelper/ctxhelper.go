// Package ctxhelper provides helper functions for working with the context
package ctxhelper

import (
	"context"

	"github.com/sirupsen/logrus"
)

var (
	// KeyLogger is the context key for storing the logger in the context
	KeyLogger = ctxKey("logger")
	// KeyRequestID is the context key for the ID of the HTTP request currently served
	KeyRequestID = ctxKey("requestId")
	// KeyWantsJSON is the context key marking that the client asked for a JSON answer instead of HTML
	KeyWantsJSON = ctxKey("wantsJson")
)

// internal context key
type ctxKey string

// Logger returns the logger from the current context. If no logger is available, it panics
func Logger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(KeyLogger).(*logrus.Entry)
	if ok {
		return logger
	}
	panic("No logger in context")
}

// RequestID returns the ID of the current request or an empty string
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)
	return id
}

// WantsJSON checks if the client of the current request prefers JSON
func WantsJSON(ctx context.Context) bool {
	ok, _ := ctx.Value(KeyWantsJSON).(bool)
	return ok
}
