package guard

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
	"github.com/rs/zerolog"
)

type options struct {
	routes goSession.RoutesConfig
	splash http.Handler
	logger zerolog.Logger
}

// Option configures [Middleware] and [Gin].
type Option func(*options)

// WithRoutes overrides the login and home paths.
func WithRoutes(r goSession.RoutesConfig) Option {
	return func(o *options) { o.routes = r }
}

// WithSplash sets the handler served while the session is loading.
func WithSplash(h http.Handler) Option {
	return func(o *options) { o.splash = h }
}

// WithLogger sets the logger for guard decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		routes: goSession.DefaultConfig().Routes,
		splash: http.HandlerFunc(Splash),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Splash is the default loading placeholder: 503 with Retry-After so the
// client asks again once the session settles.
func Splash(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, "loading", http.StatusServiceUnavailable)
}

// RequestLocation returns the location requested by r.
func RequestLocation(r *http.Request) navigation.Location {
	return navigation.Location{Path: r.URL.Path, Query: r.URL.RawQuery}
}

// Middleware guards next. Redirects use 303 so the browser replaces the
// protected request with a GET of the target.
func Middleware(src Source, required []session.Role, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			st := src.State()
			at := RequestLocation(r)
			d := Decide(st, at, required, o.routes)
			o.logger.Debug().
				Str("path", at.Path).
				Stringer("outcome", d.Outcome).
				Msg("guard decision")

			switch d.Outcome {
			case Loading:
				o.splash.ServeHTTP(w, r)
			case RedirectLogin, RedirectHome:
				http.Redirect(w, r, d.Target.URL(), http.StatusSeeOther)
			default:
				ctx := goSession.WithSession(r.Context(), st.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}
