// Package goSession is the client-side session core of the NutraCall dashboard:
// a [Store] that owns "who is logged in", persists it to durable client storage,
// and broadcasts every change to subscribers such as the route guard.
//
// # Lifecycle
//
// A single Store is built at application start with [Builder.Build] and lives for
// the process lifetime. [Store.Initialize] rehydrates the session from storage;
// until it returns, [State.Loading] is true and consumers must not decide
// anything about authentication.
//
// # Persistence invariant
//
// The token key and the user record key are written together and cleared
// together. A session is present in memory if and only if both keys are
// present. Initialization repairs any state that breaks this rule (corrupt
// record, orphan key, expired token) by purging both keys.
//
// # Architecture boundaries
//
// The Store never talks to the network itself: authentication goes through an
// [authclient.Client], redirects through a [navigation.Navigator]. It subscribes
// to the API layer's unauthorized event through [Store.HandleUnauthorized].
//
// # What this package must NOT do
//
//   - Render anything or decide route access (package guard does).
//   - Retry, queue or serialize Login/Signup calls; callers disable resubmission.
//   - Return errors from Logout: it always succeeds locally.
package goSession
