// Package prometheus renders session store metrics in the Prometheus text
// exposition format.
//
// Counter names are nutracall_session_*_total; the single histogram is
// nutracall_session_auth_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global registry. Callers mount the Handler.
//   - Mutate store state.
package prometheus
