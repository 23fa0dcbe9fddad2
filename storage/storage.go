package storage

import (
	"context"
	"errors"
)

// ErrUnavailable wraps backend failures (I/O errors, Redis connectivity).
var ErrUnavailable = errors.New("storage unavailable")

// Storage is persistent key-value storage that survives process restarts.
//
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetMany writes all entries together.
	SetMany(ctx context.Context, entries map[string]string) error
	// Delete removes the given keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
