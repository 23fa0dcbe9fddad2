package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

type sessionContextKey struct{}

// WithSession attaches a copy of s to ctx. The guard middleware uses it to
// hand the authorized session to downstream handlers.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s.Clone())
}

// SessionFromContext returns the session attached by [WithSession].
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}

	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	if !ok || s == nil {
		return nil, false
	}
	return s.Clone(), true
}
