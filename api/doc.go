// Package api is the JSON request helper used to reach the product backend.
//
// A [Client] attaches the bearer token supplied by its [TokenSource] and, on a
// 401 response, emits an "unauthorized" event to every listener registered with
// [Client.OnUnauthorized]. The package never touches storage or routing: the
// session store subscribes to the event and decides what to purge, and a
// navigator owns the redirect.
package api
