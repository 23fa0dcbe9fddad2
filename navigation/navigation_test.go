package navigation

import (
	"context"
	"net/url"
	"testing"
)

func TestLocationURLCarriesIntent(t *testing.T) {
	login := At("/login").WithFrom(At("/agents?tab=active"))

	got := login.URL()
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if u.Path != "/login" {
		t.Fatalf("path = %q", u.Path)
	}
	from := FromRequestURL(u)
	if from == nil || from.Path != "/agents" || from.Query != "tab=active" {
		t.Fatalf("from = %+v", from)
	}
}

func TestWithFromDropsNestedIntent(t *testing.T) {
	inner := At("/a").WithFrom(At("/b"))
	outer := At("/login").WithFrom(inner)
	if outer.From.From != nil {
		t.Fatal("nested intent should be dropped")
	}
}

func TestReturnToConsumesIntent(t *testing.T) {
	login := At("/login").WithFrom(At("/agents"))

	dest := ReturnTo(login, "/")
	if dest.Path != "/agents" || dest.From != nil {
		t.Fatalf("dest = %+v", dest)
	}

	if got := ReturnTo(At("/login"), "/"); got.Path != "/" {
		t.Fatalf("fallback = %+v", got)
	}
}

func TestReturnToRejectsForeignDestinations(t *testing.T) {
	for _, raw := range []string{"//evil.example", "https://evil.example/", "/\\evil", "/\t/evil", "/\n/evil", "/\x7f/evil", "agents", ""} {
		login := Location{Path: "/login", From: &Location{Path: raw}}
		if got := ReturnTo(login, "/"); got.Path != "/" {
			t.Fatalf("ReturnTo with from=%q = %+v, want fallback", raw, got)
		}

		u := &url.URL{Path: "/login", RawQuery: url.Values{FromParam: {raw}}.Encode()}
		if FromRequestURL(u) != nil {
			t.Fatalf("FromRequestURL accepted %q", raw)
		}
	}
}

func TestHistoryReplaceDoesNotGrow(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(At("/"))

	h.Navigate(ctx, At("/agents"), false)
	h.Navigate(ctx, At("/login"), true)

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}
	if h.Current().Path != "/login" {
		t.Fatalf("current = %+v", h.Current())
	}
	if !h.Back() || h.Current().Path != "/" {
		t.Fatal("back should return to the entry before the replaced one")
	}
	if h.Back() {
		t.Fatal("back on a single entry must fail")
	}
}
