// Package notify is the toast surface: a sink for short human-readable
// messages produced by the login, signup and logout flows.
package notify
