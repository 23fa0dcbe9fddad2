package forms

import (
	"context"
	"errors"
	"sync/atomic"
	"unicode/utf8"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/notify"
)

// MinPasswordLength is the shortest password the signup form accepts.
const MinPasswordLength = 6

// Toast texts.
const (
	TitleError          = "Error"
	MsgIncomplete       = "Fill in all fields"
	MsgPasswordTooShort = "Password must be at least 6 characters"

	TitleWelcome   = "Welcome!"
	MsgSignedIn    = "Signed in successfully"
	MsgLoginFailed = "Login failed"

	TitleAccountCreated = "Account created!"
	MsgWelcomeAboard    = "Welcome to NutraCall"
	MsgSignupFailed     = "Could not create account"

	TitleSignedOut = "Signed out"
)

var (
	// ErrSubmitting is returned when a submission is already pending.
	ErrSubmitting = errors.New("submission already in progress")
	// ErrIncomplete is returned when a required field is empty.
	ErrIncomplete = errors.New("required field missing")
	// ErrPasswordTooShort is returned by the signup form.
	ErrPasswordTooShort = errors.New("password too short")
)

// FailedError carries the store result of a rejected submission.
type FailedError struct {
	Result goSession.Result
}

func (e *FailedError) Error() string {
	return e.Result.Error
}

func (e *FailedError) Unwrap() error {
	return e.Result.Err
}

// Authenticator is the part of the session store the forms drive.
// *goSession.Store satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) goSession.Result
	Signup(ctx context.Context, email, password, name string) goSession.Result
	Logout(ctx context.Context)
}

type base struct {
	auth     Authenticator
	nav      navigation.Navigator
	notifier notify.Notifier
	routes   goSession.RoutesConfig

	submitting atomic.Bool
}

func (b *base) init(auth Authenticator, nav navigation.Navigator, n notify.Notifier, routes goSession.RoutesConfig) {
	if n == nil {
		n = notify.Discard
	}
	b.auth, b.nav, b.notifier, b.routes = auth, nav, n, routes
}

// Pending reports whether a submission is in flight. Views disable the
// submit control while it is true.
func (b *base) Pending() bool {
	return b.submitting.Load()
}

func (b *base) lock() bool {
	return b.submitting.CompareAndSwap(false, true)
}

func (b *base) unlock() {
	b.submitting.Store(false)
}

func (b *base) fail(ctx context.Context, description string) {
	b.notifier.Show(ctx, notify.Message{Title: TitleError, Description: description, Variant: notify.Destructive})
}

func (b *base) navigate(ctx context.Context, to navigation.Location) {
	if b.nav != nil {
		b.nav.Navigate(ctx, to, true)
	}
}

/*
====================================
LOGIN
====================================
*/

// LoginForm drives the login view. The view location it is built with holds
// the navigation intent captured by the guard.
type LoginForm struct {
	base
	view navigation.Location
}

// NewLoginForm returns a form for the login view at view.
func NewLoginForm(auth Authenticator, nav navigation.Navigator, n notify.Notifier, routes goSession.RoutesConfig, view navigation.Location) *LoginForm {
	f := &LoginForm{view: view}
	f.init(auth, nav, n, routes)
	return f
}

// Submit logs in. On success it returns the user to the captured intent, or
// home when there is none.
func (f *LoginForm) Submit(ctx context.Context, email, password string) error {
	if !f.lock() {
		return ErrSubmitting
	}
	defer f.unlock()

	if email == "" || password == "" {
		f.fail(ctx, MsgIncomplete)
		return ErrIncomplete
	}

	res := f.auth.Login(ctx, email, password)
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = MsgLoginFailed
		}
		f.fail(ctx, msg)
		return &FailedError{Result: res}
	}

	f.notifier.Show(ctx, notify.Message{Title: TitleWelcome, Description: MsgSignedIn})
	f.navigate(ctx, navigation.ReturnTo(f.view, f.routes.Home))
	return nil
}

/*
====================================
SIGNUP
====================================
*/

// SignupForm drives the signup view.
type SignupForm struct {
	base
}

func NewSignupForm(auth Authenticator, nav navigation.Navigator, n notify.Notifier, routes goSession.RoutesConfig) *SignupForm {
	f := &SignupForm{}
	f.init(auth, nav, n, routes)
	return f
}

// Submit creates the account and sends the new user home.
func (f *SignupForm) Submit(ctx context.Context, email, password, name string) error {
	if !f.lock() {
		return ErrSubmitting
	}
	defer f.unlock()

	if email == "" || password == "" || name == "" {
		f.fail(ctx, MsgIncomplete)
		return ErrIncomplete
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		f.fail(ctx, MsgPasswordTooShort)
		return ErrPasswordTooShort
	}

	res := f.auth.Signup(ctx, email, password, name)
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = MsgSignupFailed
		}
		f.fail(ctx, msg)
		return &FailedError{Result: res}
	}

	f.notifier.Show(ctx, notify.Message{Title: TitleAccountCreated, Description: MsgWelcomeAboard})
	f.navigate(ctx, navigation.At(f.routes.Home))
	return nil
}

/*
====================================
LOGOUT
====================================
*/

// Logout signs out, shows a toast and replaces the current view with the
// login view. It never fails.
func Logout(ctx context.Context, auth Authenticator, nav navigation.Navigator, n notify.Notifier, routes goSession.RoutesConfig) {
	auth.Logout(ctx)
	if n != nil {
		n.Show(ctx, notify.Message{Title: TitleSignedOut})
	}
	if nav != nil {
		nav.Navigate(ctx, navigation.At(routes.Login), true)
	}
}
