package guard

import (
	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
)

// Outcome is the kind of a [Decision].
type Outcome int

const (
	// Loading means the session is indeterminate: show a placeholder and do
	// not redirect yet.
	Loading Outcome = iota
	// Render means the protected view may render.
	Render
	// RedirectLogin sends an unauthenticated visitor to the login view.
	RedirectLogin
	// RedirectHome sends an authenticated visitor lacking a required role to
	// the default view.
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the result of guarding one navigation. Target and Replace are
// only meaningful for redirects.
type Decision struct {
	Outcome Outcome
	Target  navigation.Location
	Replace bool
}

// Redirect reports whether d asks for navigation.
func (d Decision) Redirect() bool {
	return d.Outcome == RedirectLogin || d.Outcome == RedirectHome
}

// Decide evaluates the guard rules in order: loading, authentication, role
// membership. An empty required set admits every authenticated role.
func Decide(st goSession.State, at navigation.Location, required []session.Role, routes goSession.RoutesConfig) Decision {
	if st.Loading {
		return Decision{Outcome: Loading}
	}
	if !st.Authenticated || st.User == nil {
		return Decision{
			Outcome: RedirectLogin,
			Target:  navigation.At(routes.Login).WithFrom(at),
			Replace: true,
		}
	}
	if len(required) > 0 && !st.User.HasRole(required...) {
		return Decision{
			Outcome: RedirectHome,
			Target:  navigation.At(routes.Home),
			Replace: true,
		}
	}
	return Decision{Outcome: Render}
}
