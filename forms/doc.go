// Package forms holds the controllers behind the login and signup views and
// the logout action: field validation, the submit lock, toasts and the
// navigation that follows a successful submission.
//
// A form never writes the session itself; it calls the store and reacts to
// the returned result.
package forms
