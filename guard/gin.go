package guard

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the authorized *session.Session.
const SessionKey = "session"

// Gin is the gin form of [Middleware].
func Gin(src Source, required []session.Role, opts ...Option) gin.HandlerFunc {
	o := buildOptions(opts)

	return func(c *gin.Context) {
		if src == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		st := src.State()
		at := RequestLocation(c.Request)
		d := Decide(st, at, required, o.routes)
		o.logger.Debug().
			Str("path", at.Path).
			Stringer("outcome", d.Outcome).
			Msg("guard decision")

		switch d.Outcome {
		case Loading:
			o.splash.ServeHTTP(c.Writer, c.Request)
			c.Abort()
		case RedirectLogin, RedirectHome:
			c.Redirect(http.StatusSeeOther, d.Target.URL())
			c.Abort()
		default:
			c.Set(SessionKey, st.User)
			c.Request = c.Request.WithContext(goSession.WithSession(c.Request.Context(), st.User))
			c.Next()
		}
	}
}

// GinSession returns the session stored by [Gin].
func GinSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}
