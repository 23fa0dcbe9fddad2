package goSession

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether token is a JWT whose exp claim lies before
// now-leeway. The signature is not checked: the store only holds the token on
// behalf of the backend. Opaque tokens and JWTs without exp never expire here.
func tokenExpired(token string, now time.Time, leeway time.Duration) bool {
	claims := &gojwt.RegisteredClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.Add(-leeway).After(claims.ExpiresAt.Time)
}
