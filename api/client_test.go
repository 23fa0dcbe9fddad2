package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(agent{ID: "a1", Name: "Sales"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return "tok-1", nil
	})))

	got, err := Get[agent](context.Background(), c, "/agents/a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Sales" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q", gotType)
	}
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return "", nil
	})))
	if _, err := Delete[struct{}](context.Background(), c, "/agents/a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if hadAuth {
		t.Fatal("Authorization header sent without a token")
	}
}

func TestClientSendsJSONBodies(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		var in agent
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
			return
		}
		in.ID = "new"
		_ = json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	body := agent{Name: "Support"}

	for _, call := range []func() (agent, error){
		func() (agent, error) { return Post[agent](ctx, c, "/agents", body) },
		func() (agent, error) { return Put[agent](ctx, c, "/agents/x", body) },
		func() (agent, error) { return Patch[agent](ctx, c, "/agents/x", body) },
	} {
		got, err := call()
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if got.ID != "new" || got.Name != "Support" {
			t.Fatalf("unexpected response %+v", got)
		}
	}
	if len(methods) != 3 || methods[0] != http.MethodPost || methods[1] != http.MethodPut || methods[2] != http.MethodPatch {
		t.Fatalf("methods = %v", methods)
	}
}

func TestClientEmitsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var first, second atomic.Int32
	c.OnUnauthorized(func(context.Context) { first.Add(1) })
	remove := c.OnUnauthorized(func(context.Context) { second.Add(1) })
	remove()
	remove()

	_, err := Get[agent](context.Background(), c, "/me")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "token expired" {
		t.Fatalf("unexpected error %#v", err)
	}
	if first.Load() != 1 {
		t.Fatalf("listener called %d times, want 1", first.Load())
	}
	if second.Load() != 0 {
		t.Fatal("removed listener was called")
	}
}

func TestClientErrorWithoutMessage(t *testing.T) {
	var called atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.OnUnauthorized(func(context.Context) { called.Store(true) })

	_, err := Get[agent](context.Background(), c, "/agents")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 500 || apiErr.Message != "request failed" {
		t.Fatalf("unexpected error %v", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("500 must not match ErrUnauthorized")
	}
	if called.Load() {
		t.Fatal("unauthorized event emitted for a 500")
	}
}

func TestClientTokenSourceError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return "", errors.New("disk gone")
	})))
	if _, err := Get[agent](context.Background(), c, "/x"); err == nil {
		t.Fatal("expected token source error")
	}
}
