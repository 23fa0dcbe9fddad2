// Package session defines the persisted identity record of the current client and
// its JSON encoding.
//
// # Record layout
//
// A [Session] is stored under the user record key as a single JSON object. The
// field names are part of the persisted contract and must not be renamed:
// existing clients hold records written with them.
//
// # Architecture boundaries
//
// This package owns the [Session] model, the canonical [Role] and [Plan]
// enumerations, partial updates ([Patch]) and the codec. It does NOT read or
// write storage, talk to a backend, or decide whether a record is current.
//
// # What this package must NOT do
//
//   - Import goSession, storage, or authclient (no upward imports).
//   - Hold tokens or credentials in [Session] fields.
package session
