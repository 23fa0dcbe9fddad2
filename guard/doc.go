// Package guard decides whether a view may render for the current session.
//
// # Decisions
//
//   - [Decide] is a pure function of a session snapshot, the requested
//     location and an optional set of required roles.
//   - [Gate] applies decisions through a navigation.Navigator and can follow
//     a store so every session change is re-evaluated.
//   - [Middleware] and [Gin] apply the same decisions to HTTP requests.
//
// While the session is still loading no redirect is issued. Unauthenticated
// visitors are sent to the login view carrying the requested location as the
// navigation intent. Authenticated visitors without a required role are sent
// home. Every redirect replaces the current history entry.
//
// # Architecture boundaries
//
// The guard only reads session snapshots. It never writes storage and never
// calls the authentication backend.
//
// # What this package must NOT do
//
//   - Mutate the session (only the store does).
//   - Hold state of its own between decisions.
//   - Redirect while the store is loading.
package guard
