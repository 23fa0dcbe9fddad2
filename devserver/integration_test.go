package devserver_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/devserver"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/storage"
	"github.com/gin-gonic/gin"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStoreAgainstDevServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	cfg := devserver.DefaultConfig()
	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	srv, err := devserver.New(cfg, devserver.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if _, err := srv.Seed(session.Session{
		Email: "demo@nutracall.com", Name: "Demo", Role: session.RoleManager, Plan: session.PlanPro,
	}, "secret-pass"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	st := storage.NewMemory()
	history := navigation.NewHistory(navigation.Location{Path: "/agents"})
	store, err := goSession.New().
		WithStorage(st).
		WithAuthClient(authclient.NewHTTP(api.NewClient(ts.URL))).
		WithNavigator(history).
		WithClock(clk.Now).
		Build()
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	res := store.Login(ctx, "demo@nutracall.com", "wrong")
	if res.Success || !errors.Is(res.Err, goSession.ErrRejected) || res.Error != "invalid email or password" {
		t.Fatalf("unexpected rejection result: %+v", res)
	}

	res = store.Login(ctx, "demo@nutracall.com", "secret-pass")
	if !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
	if u := store.User(); u == nil || u.Role != session.RoleManager {
		t.Fatalf("unexpected user: %+v", u)
	}

	app := api.NewClient(ts.URL, api.WithTokenSource(store))
	defer app.OnUnauthorized(store.HandleUnauthorized)()

	me, err := api.Get[session.Session](ctx, app, "/auth/me")
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if me.Email != "demo@nutracall.com" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	clk.Advance(2 * time.Hour)
	_, err = api.Get[session.Session](ctx, app, "/auth/me")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected session cleared after 401")
	}
	if _, ok, _ := st.Get(ctx, "auth_token"); ok {
		t.Fatalf("expected token purged")
	}
	if cur := history.Current(); cur.Path != "/login" {
		t.Fatalf("current location = %v, want /login", cur)
	}
}

func TestInitializeDiscardsExpiredDevToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	cfg := devserver.DefaultConfig()
	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password = password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
	srv, err := devserver.New(cfg, devserver.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	st := storage.NewMemory()
	build := func() *goSession.Store {
		s, err := goSession.New().
			WithStorage(st).
			WithAuthClient(authclient.NewHTTP(api.NewClient(ts.URL))).
			WithClock(clk.Now).
			Build()
		if err != nil {
			t.Fatalf("build store: %v", err)
		}
		t.Cleanup(s.Close)
		if err := s.Initialize(ctx); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		return s
	}

	first := build()
	if res := first.Signup(ctx, "new@nutracall.com", "123456", "Nova"); !res.Success {
		t.Fatalf("signup failed: %+v", res)
	}
	if u := first.User(); u.Plan != session.PlanFree || u.Role != session.RoleUser {
		t.Fatalf("unexpected profile: %+v", u)
	}

	if !build().IsAuthenticated() {
		t.Fatalf("expected live token to restore")
	}

	clk.Advance(2 * time.Hour)
	if build().IsAuthenticated() {
		t.Fatalf("expected expired token to be discarded")
	}
	if st.Len() != 0 {
		t.Fatalf("expected storage purged, %d keys left", st.Len())
	}
}
