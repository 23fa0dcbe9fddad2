package authclient

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/session"
)

// ErrRejected is matched by every [*RejectedError].
var ErrRejected = errors.New("authentication rejected")

// Grant is the outcome of a successful login or signup: an opaque token and
// the profile it authenticates.
type Grant struct {
	Token string
	User  session.Session
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Client authenticates credentials against a backend.
type Client interface {
	Login(ctx context.Context, email, password string) (Grant, error)
	Signup(ctx context.Context, in SignupInput) (Grant, error)
}

// RejectedError is a backend refusal carrying a message fit for the user.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// Reject returns a [*RejectedError] with msg.
func Reject(msg string) error {
	return &RejectedError{Message: msg}
}
