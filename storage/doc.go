// Package storage provides the durable client storage used by the session store:
// a small string key-value interface with memory, file and Redis backends.
//
// # Atomic pairs
//
// The session store writes the token and the user record together. [Storage.SetMany]
// applies every key or none (Redis uses a MULTI transaction, the file backend a
// single rename), so a crash never leaves a token without its record.
//
// # What this package must NOT do
//
//   - Interpret stored values (the codec lives in package session).
//   - Import goSession (no upward imports).
package storage
