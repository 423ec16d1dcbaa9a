package infrastructure

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDKey   contextKey = "trace_id"
	sessionIDKey contextKey = "session_id"
)

// MaxRequestIDLength bounds client supplied request and session identifiers.
const MaxRequestIDLength = 128

// RequestIDFrom returns the client supplied id when it is usable and a fresh
// UUID otherwise.
func RequestIDFrom(header string) string {
	header = strings.TrimSpace(header)
	if header == "" || len(header) > MaxRequestIDLength || strings.ContainsAny(header, "\r\n") {
		return uuid.New().String()
	}
	return header
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// WithSessionID attaches the X-Session-ID of the caller.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID retrieves the client session ID from context
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}

// requestAttrs lists the request scoped values every log line should carry.
func requestAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if traceID := GetTraceID(ctx); traceID != "" {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	if sessionID := GetSessionID(ctx); sessionID != "" {
		attrs = append(attrs, slog.String("session_id", sessionID))
	}
	return attrs
}
