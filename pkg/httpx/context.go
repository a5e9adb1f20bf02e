package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeySessionID ctxKey = "session_id"
)

// ContextWithSession records the authenticated session identity for
// downstream handlers.
func ContextWithSession(ctx context.Context, sessionID, userID string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	return ctx
}

// UserIDFromContext returns the authenticated user id, or "" when the
// request carries no session.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the session id attached by the session
// middleware, or "" when absent.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySessionID).(string); ok {
		return v
	}
	return ""
}
