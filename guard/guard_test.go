package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/storage"
	"github.com/gin-gonic/gin"
)

var routes = goSession.DefaultConfig().Routes

type fixedSource struct {
	mu sync.Mutex
	st goSession.State
}

func (f *fixedSource) State() goSession.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func userWithRole(role session.Role) *session.Session {
	return &session.Session{ID: "u1", Email: "a@b.com", Role: role, Plan: session.PlanFree}
}

func authed(role session.Role) goSession.State {
	return goSession.State{User: userWithRole(role), Authenticated: true}
}

func newStore(t *testing.T) *goSession.Store {
	t.Helper()
	s, err := goSession.New().
		WithStorage(storage.NewMemory()).
		WithAuthClient(authclient.NewSimulated(authclient.WithDelay(0))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestDecide(t *testing.T) {
	at := navigation.At("/agents")

	tests := []struct {
		name     string
		state    goSession.State
		required []session.Role
		want     Outcome
		target   string
	}{
		{name: "loading wins over everything", state: goSession.State{Loading: true}, want: Loading},
		{name: "loading while authenticated", state: goSession.State{Loading: true, User: userWithRole(session.RoleUser), Authenticated: true}, required: []session.Role{session.RoleAdmin}, want: Loading},
		{name: "unauthenticated", state: goSession.State{}, want: RedirectLogin, target: "/login?from=%2Fagents"},
		{name: "authenticated no roles", state: authed(session.RoleUser), want: Render},
		{name: "role member", state: authed(session.RoleAdmin), required: []session.Role{session.RoleSuperAdmin, session.RoleAdmin}, want: Render},
		{name: "role missing", state: authed(session.RoleUser), required: []session.Role{session.RoleAdmin}, want: RedirectHome, target: "/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.state, at, tc.required, routes)
			if d.Outcome != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, d.Outcome)
			}
			if tc.target == "" {
				if d.Redirect() {
					t.Fatalf("unexpected redirect to %q", d.Target.URL())
				}
				return
			}
			if !d.Replace {
				t.Fatal("redirects must replace")
			}
			if got := d.Target.URL(); got != tc.target {
				t.Fatalf("expected target %q, got %q", tc.target, got)
			}
		})
	}
}

func TestGateForbiddenRoleRedirectsHome(t *testing.T) {
	history := navigation.NewHistory(navigation.At("/"))
	history.Navigate(context.Background(), navigation.At("/billing"), false)

	g := NewGate(&fixedSource{st: authed(session.RoleUser)}, history, routes)
	d := g.Enter(context.Background(), navigation.At("/billing"), session.RoleAdmin)

	if d.Outcome != RedirectHome {
		t.Fatalf("expected redirect home, got %s", d.Outcome)
	}
	if history.Current().Path != "/" {
		t.Fatalf("expected /, got %q", history.Current().Path)
	}
	if n := len(history.Entries()); n != 2 {
		t.Fatalf("expected protected entry replaced (2 entries), got %d", n)
	}
}

func TestGateLoadingDoesNotNavigate(t *testing.T) {
	history := navigation.NewHistory(navigation.At("/agents"))
	g := NewGate(&fixedSource{st: goSession.State{Loading: true}}, history, routes)

	if d := g.Enter(context.Background(), navigation.At("/agents")); d.Outcome != Loading {
		t.Fatalf("expected loading, got %s", d.Outcome)
	}
	if history.Current().Path != "/agents" || len(history.Entries()) != 1 {
		t.Fatal("no navigation may happen while loading")
	}
}

func TestGateReturnsToIntentAfterLogin(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	history := navigation.NewHistory(navigation.At("/agents"))
	g := NewGate(store, history, routes)

	if d := g.Enter(ctx, navigation.At("/agents")); d.Outcome != RedirectLogin {
		t.Fatalf("expected redirect to login, got %s", d.Outcome)
	}
	loginView := history.Current()
	if loginView.Path != "/login" || loginView.From == nil || loginView.From.Path != "/agents" {
		t.Fatalf("expected /login carrying from=/agents, got %+v", loginView)
	}

	if res := store.Login(ctx, "a@b.com", "pw"); !res.Success {
		t.Fatalf("login failed: %q", res.Error)
	}
	dest := navigation.ReturnTo(loginView, routes.Home)
	history.Navigate(ctx, dest, true)

	if history.Current().Path != "/agents" {
		t.Fatalf("expected return to /agents, got %q", history.Current().Path)
	}
	if d := g.Enter(ctx, history.Current()); d.Outcome != Render {
		t.Fatalf("expected render after login, got %s", d.Outcome)
	}
}

func TestGateFollowReevaluatesOnChange(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	history := navigation.NewHistory(navigation.At("/calls"))
	g := NewGate(store, history, routes)

	var (
		mu       sync.Mutex
		outcomes []Outcome
	)
	stop := g.Follow(ctx, store, history.Current, func(d Decision) {
		mu.Lock()
		outcomes = append(outcomes, d.Outcome)
		mu.Unlock()
	})
	defer stop()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 2 || outcomes[0] != Loading || outcomes[1] != RedirectLogin {
		t.Fatalf("expected [loading redirect_login], got %v", outcomes)
	}
	if history.Current().Path != "/login" {
		t.Fatalf("expected /login, got %q", history.Current().Path)
	}
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := goSession.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "missing session", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("hello " + s.ID))
	})
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		state    goSession.State
		required []session.Role
		status   int
		location string
		body     string
	}{
		{name: "loading", state: goSession.State{Loading: true}, status: http.StatusServiceUnavailable},
		{name: "unauthenticated", state: goSession.State{}, status: http.StatusSeeOther, location: "/login?from=%2Fagents%3Ftab%3Dactive"},
		{name: "forbidden", state: authed(session.RoleEmployee), required: []session.Role{session.RoleAdmin}, status: http.StatusSeeOther, location: "/"},
		{name: "authorized", state: authed(session.RoleAdmin), required: []session.Role{session.RoleAdmin}, status: http.StatusOK, body: "hello u1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := Middleware(&fixedSource{st: tc.state}, tc.required)(protected())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agents?tab=active", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected Location %q, got %q", tc.location, rec.Header().Get("Location"))
			}
			if tc.status == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") != "1" {
				t.Fatal("expected Retry-After on splash")
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("expected body %q, got %q", tc.body, rec.Body.String())
			}
		})
	}
}

func TestMiddlewareCustomSplashAndRoutes(t *testing.T) {
	splash := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := Middleware(&fixedSource{st: goSession.State{Loading: true}}, nil, WithSplash(splash))(protected())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected custom splash, got %d", rec.Code)
	}

	h = Middleware(&fixedSource{}, nil, WithRoutes(goSession.RoutesConfig{Login: "/entrar", Home: "/inicio"}))(protected())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	if got := rec.Header().Get("Location"); got != "/entrar?from=%2Forders" {
		t.Fatalf("expected custom login route, got %q", got)
	}
}

func TestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	src := &fixedSource{}
	r := gin.New()
	r.GET("/admin", Gin(src, []session.Role{session.RoleAdmin}), func(c *gin.Context) {
		s, ok := GinSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "admin "+s.ID)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?from=%2Fadmin" {
		t.Fatalf("expected login redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	src.mu.Lock()
	src.st = authed(session.RoleUser)
	src.mu.Unlock()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected home redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	src.mu.Lock()
	src.st = authed(session.RoleAdmin)
	src.mu.Unlock()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "admin u1" {
		t.Fatalf("expected render, got %d %q", rec.Code, rec.Body.String())
	}
}
