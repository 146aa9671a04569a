package util

import (
	"context"
	"strings"
)

type requestIDContextKey string

const (
	// RequestIDHeader carries the request id on outbound API calls.
	RequestIDHeader          = "X-Request-Id"
	requestIDCtxKey          = requestIDContextKey("request_id")
	defaultRequestIDFallback = ""
)

// ContextWithRequestID stores id in ctx together with a child logger carrying it,
// so downstream code can call LoggerFromContext(ctx) and get request-scoped logs.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, requestIDCtxKey, id)
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With("request_id", id))
}

// EnsureRequestID returns ctx unchanged when it already carries a request id,
// otherwise it generates one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewID()
	return ContextWithRequestID(ctx, id), id
}

// RequestIDFromContext returns request id from context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return defaultRequestIDFallback
	}
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
