package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config configures a [Server].
type Config struct {
	// Secret signs HS256 access tokens. At least 32 bytes.
	Secret    []byte
	AccessTTL time.Duration
	Issuer    string
	Password  password.Config
}

// DefaultConfig returns a one hour token lifetime and the default Argon2id
// cost. Secret must still be set.
func DefaultConfig() Config {
	return Config{
		AccessTTL: time.Hour,
		Issuer:    "nutracall-dev",
		Password:  password.DefaultConfig(),
	}
}

// Option customizes a [Server].
type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithLimiter enables failed-login throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is the development authentication backend.
type Server struct {
	users   *Directory
	hasher  *password.Argon2
	tokens  *jwt.Manager
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time

	engine *gin.Engine
}

// New builds the server and its router.
func New(cfg Config, opts ...Option) (*Server, error) {
	s := &Server{
		users: NewDirectory(),
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	hasher, err := password.NewArgon2(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.Secret,
		Issuer:        cfg.Issuer,
		Now:           s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	s.hasher = hasher
	s.tokens = tokens

	engine := gin.New()
	engine.Use(requestID(), requestLogger(s.log), recovery(s.log))
	s.Register(engine.Group(""))
	s.engine = engine

	return s, nil
}

// Register mounts the auth routes on r.
func (s *Server) Register(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/signup", s.signup)

	me := auth.Group("/me", requireBearer(s.tokens))
	me.GET("", s.me)
	me.PATCH("", s.updateMe)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Users exposes the account directory.
func (s *Server) Users() *Directory {
	return s.users
}

// Seed registers an account directly. ID and timestamps are filled in
// when zero.
func (s *Server) Seed(profile session.Session, plain string) (session.Session, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return session.Session{}, err
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}
	if err := s.users.Create(profile, hash); err != nil {
		return session.Session{}, err
	}
	return profile, nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
