// Package navigation models client-side routing for the session core: locations,
// the navigation intent captured when a protected view redirects to login, and a
// [Navigator] able to replace the current history entry.
package navigation
