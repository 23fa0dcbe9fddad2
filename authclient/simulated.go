package authclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/google/uuid"
)

const (
	// MockToken is the placeholder token issued by [Simulated].
	MockToken = "mock_jwt_token"

	// DefaultDelay is the artificial latency of [Simulated].
	DefaultDelay = time.Second
)

// MockProfile is the profile [Simulated] returns on login, with the email
// replaced by the one supplied.
func MockProfile(now time.Time) session.Session {
	return session.Session{
		ID:        "1",
		Email:     "usuario@nutracall.com",
		Name:      "Usuário Demo",
		Role:      session.RoleAdmin,
		Plan:      session.PlanCreator,
		Credits:   247.50,
		Timezone:  "America/Sao_Paulo",
		Language:  "pt-BR",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SimulatedOption configures a [Simulated] client.
type SimulatedOption func(*Simulated)

// WithDelay sets the artificial latency. Zero disables it.
func WithDelay(d time.Duration) SimulatedOption {
	return func(s *Simulated) { s.delay = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SimulatedOption {
	return func(s *Simulated) { s.now = now }
}

// WithProfile replaces the login profile.
func WithProfile(p session.Session) SimulatedOption {
	return func(s *Simulated) { s.profile = &p }
}

// Simulated is an in-process backend that accepts any non-empty credentials
// after a fixed delay.
type Simulated struct {
	delay   time.Duration
	now     func() time.Time
	profile *session.Session

	mu       sync.RWMutex
	rejected map[string]string
}

// NewSimulated returns a [Simulated] client with [DefaultDelay].
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		delay:    DefaultDelay,
		now:      time.Now,
		rejected: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RejectEmail makes every later login or signup for email fail with msg.
func (s *Simulated) RejectEmail(email, msg string) {
	s.mu.Lock()
	s.rejected[strings.ToLower(email)] = msg
	s.mu.Unlock()
}

func (s *Simulated) rejection(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.rejected[strings.ToLower(email)]
	return msg, ok
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login returns the mock profile for any non-empty credentials.
func (s *Simulated) Login(ctx context.Context, email, password string) (Grant, error) {
	if err := s.wait(ctx); err != nil {
		return Grant{}, err
	}
	if email == "" || password == "" {
		return Grant{}, Reject("invalid credentials")
	}
	if msg, ok := s.rejection(email); ok {
		return Grant{}, Reject(msg)
	}

	user := MockProfile(s.now())
	if s.profile != nil {
		user = *s.profile
	}
	user.Email = email

	return Grant{Token: MockToken, User: user}, nil
}

// Signup returns a fresh free-tier profile with zero credits.
func (s *Simulated) Signup(ctx context.Context, in SignupInput) (Grant, error) {
	if err := s.wait(ctx); err != nil {
		return Grant{}, err
	}
	if in.Email == "" || in.Password == "" || in.Name == "" {
		return Grant{}, Reject("fill in all fields")
	}
	if msg, ok := s.rejection(in.Email); ok {
		return Grant{}, Reject(msg)
	}

	now := s.now()
	user := MockProfile(now)
	user.ID = uuid.NewString()
	user.Email = in.Email
	user.Name = in.Name
	user.Role = session.RoleUser
	user.Plan = session.PlanFree
	user.Credits = 0

	return Grant{Token: MockToken, User: user}, nil
}
