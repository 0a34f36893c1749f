package middleware

import (
	"context"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the session placed by Auth or OptionalAuth. Requests
// that passed neither yield the anonymous session.
func SessionFromContext(ctx context.Context) session.Session {
	if ctx == nil {
		return session.Anonymous
	}
	if v, ok := ctx.Value(ctxSession).(session.Session); ok {
		return v
	}
	return session.Anonymous
}

// WithSession injects the session into the context for downstream handlers.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, sess)
}
