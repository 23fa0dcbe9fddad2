// Package jwt issues and verifies the bearer tokens handed out by the
// development backend. Tokens carry the user id, email and role so a
// request can be attributed without a directory lookup.
package jwt
