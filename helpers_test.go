package goSession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/storage"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// scriptedClient answers Login and Signup from functions set per test.
type scriptedClient struct {
	mu          sync.Mutex
	loginCalls  int
	signupCalls int
	login       func(ctx context.Context, email, password string) (authclient.Grant, error)
	signup      func(ctx context.Context, in authclient.SignupInput) (authclient.Grant, error)
}

func (c *scriptedClient) Login(ctx context.Context, email, password string) (authclient.Grant, error) {
	c.mu.Lock()
	c.loginCalls++
	fn := c.login
	c.mu.Unlock()
	return fn(ctx, email, password)
}

func (c *scriptedClient) Signup(ctx context.Context, in authclient.SignupInput) (authclient.Grant, error) {
	c.mu.Lock()
	c.signupCalls++
	fn := c.signup
	c.mu.Unlock()
	return fn(ctx, in)
}

func (c *scriptedClient) calls() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCalls, c.signupCalls
}

// failingStorage wraps a Storage and fails the selected operations.
type failingStorage struct {
	storage.Storage
	failGet    bool
	failSet    bool
	failDelete bool
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, storage.ErrUnavailable
	}
	return f.Storage.Get(ctx, key)
}

func (f *failingStorage) SetMany(ctx context.Context, entries map[string]string) error {
	if f.failSet {
		return storage.ErrUnavailable
	}
	return f.Storage.SetMany(ctx, entries)
}

func (f *failingStorage) Delete(ctx context.Context, keys ...string) error {
	if f.failDelete {
		return storage.ErrUnavailable
	}
	return f.Storage.Delete(ctx, keys...)
}

func newTestStore(t *testing.T, st storage.Storage, client authclient.Client, opts ...func(*Builder)) *Store {
	t.Helper()

	if client == nil {
		client = authclient.NewSimulated(authclient.WithDelay(0), authclient.WithClock(testClock))
	}
	b := New().
		WithStorage(st).
		WithAuthClient(client).
		WithClock(testClock)
	for _, opt := range opts {
		opt(b)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func mustInitialize(t *testing.T, s *Store) {
	t.Helper()
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
}

func mustLogin(t *testing.T, s *Store, email string) {
	t.Helper()
	res := s.Login(context.Background(), email, "pw")
	if !res.Success {
		t.Fatalf("Login failed: %q (%v)", res.Error, res.Err)
	}
}

func seed(t *testing.T, st storage.Storage, token string, user *session.Session) {
	t.Helper()

	entries := map[string]string{}
	if token != "" {
		entries["auth_token"] = token
	}
	if user != nil {
		data, err := session.Encode(user)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		entries["user"] = string(data)
	}
	if err := st.SetMany(context.Background(), entries); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func stored(t *testing.T, st storage.Storage, key string) (string, bool) {
	t.Helper()
	v, ok, err := st.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return v, ok
}

// assertConsistent checks that authentication, the in-memory session and the
// persisted pair agree.
func assertConsistent(t *testing.T, s *Store, st storage.Storage) {
	t.Helper()

	_, hasToken := stored(t, st, "auth_token")
	_, hasRecord := stored(t, st, "user")
	if hasToken != hasRecord {
		t.Fatalf("token present=%v but record present=%v", hasToken, hasRecord)
	}
	if s.IsAuthenticated() != (s.User() != nil) {
		t.Fatal("IsAuthenticated disagrees with User")
	}
	if s.IsAuthenticated() != hasToken {
		t.Fatalf("authenticated=%v but persisted=%v", s.IsAuthenticated(), hasToken)
	}
}

func testUser(role session.Role) *session.Session {
	return &session.Session{
		ID:        "u-42",
		Email:     "ana@example.com",
		Name:      "Ana",
		Role:      role,
		Plan:      session.PlanStarter,
		Credits:   10,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func sameSession(t *testing.T, a, b *session.Session) bool {
	t.Helper()
	if a == nil || b == nil {
		return a == b
	}
	da, err := session.Encode(a)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	db, err := session.Encode(b)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return string(da) == string(db)
}

func sessionPatchCredits(v float64) session.Patch {
	return session.Patch{Credits: &v}
}
