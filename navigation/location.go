package navigation

import (
	"net/url"
	"strings"
)

// FromParam is the query parameter carrying a navigation intent over HTTP.
const FromParam = "from"

// Location is a routable place in the application. From holds the navigation
// intent: the location the user asked for before being redirected.
type Location struct {
	Path  string
	Query string
	From  *Location
}

// At returns a Location for path, splitting off any query string.
func At(path string) Location {
	p, q, _ := strings.Cut(path, "?")
	return Location{Path: p, Query: q}
}

// String renders the path and query, without the intent.
func (l Location) String() string {
	if l.Query == "" {
		return l.Path
	}
	return l.Path + "?" + l.Query
}

// WithFrom returns l carrying from as its intent. Nested intents are dropped
// so an intent never points at another redirect.
func (l Location) WithFrom(from Location) Location {
	from.From = nil
	l.From = &from
	return l
}

// URL renders l for an HTTP redirect, encoding the intent as ?from=.
func (l Location) URL() string {
	if l.From == nil {
		return l.String()
	}
	q, _ := url.ParseQuery(l.Query)
	q.Set(FromParam, l.From.String())
	return l.Path + "?" + q.Encode()
}

// FromRequestURL parses the intent carried by an HTTP request to a login
// view. Unsafe or missing values yield nil.
func FromRequestURL(u *url.URL) *Location {
	if u == nil {
		return nil
	}
	raw := u.Query().Get(FromParam)
	if !IsLocalPath(raw) {
		return nil
	}
	loc := At(raw)
	return &loc
}

// ReturnTo consumes the intent carried by l: it returns the original
// destination when present and safe, else fallback. The returned location
// never carries an intent.
func ReturnTo(l Location, fallback string) Location {
	if l.From != nil && IsLocalPath(l.From.String()) {
		return Location{Path: l.From.Path, Query: l.From.Query}
	}
	return At(fallback)
}

// IsLocalPath reports whether p is an absolute path on this origin. Scheme-
// relative ("//host") and backslash forms are rejected so an intent can never
// send the user to another site. Browsers drop TAB, CR and LF from URLs, so
// any ASCII control character rejects p outright.
func IsLocalPath(p string) bool {
	if strings.IndexFunc(p, isControl) >= 0 {
		return false
	}
	if p == "" || p[0] != '/' {
		return false
	}
	return !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
