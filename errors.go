package goSession

import "errors"

var (
	// ErrMissingCredentials is reported when Login receives an empty email or password.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrMissingSignupFields is reported when Signup receives an empty email, password or name.
	ErrMissingSignupFields = errors.New("missing signup fields")
	// ErrRejected is reported when the authentication backend refuses the request.
	ErrRejected = errors.New("rejected by authentication backend")
	// ErrAuthBackend is reported when the authentication backend could not be reached or misbehaved.
	ErrAuthBackend = errors.New("authentication backend failure")
	// ErrCancelled is reported when the caller's context ended before the backend answered.
	ErrCancelled = errors.New("authentication cancelled")
	// ErrPersist is reported when the session could not be written to durable storage.
	ErrPersist = errors.New("session persistence failed")
	// ErrStorage wraps durable storage read failures.
	ErrStorage = errors.New("session storage unavailable")
	// ErrInvalidPatch is returned by UpdateUser for a patch carrying an unknown role or plan.
	ErrInvalidPatch = errors.New("invalid session patch")
	// ErrStoreClosed is returned by operations on a closed Store.
	ErrStoreClosed = errors.New("session store closed")
)
