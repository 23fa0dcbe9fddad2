package guard

import (
	"context"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/navigation"
	"github.com/MrEthical07/goSession/session"
)

// Source supplies session snapshots. *goSession.Store satisfies it.
type Source interface {
	State() goSession.State
}

// Subscriber is a [Source] that broadcasts changes. *goSession.Store
// satisfies it.
type Subscriber interface {
	Source
	Subscribe(fn func(goSession.State)) (cancel func())
}

// Gate guards in-process navigation.
type Gate struct {
	src    Source
	nav    navigation.Navigator
	routes goSession.RoutesConfig
}

// NewGate returns a Gate reading src and redirecting through nav.
func NewGate(src Source, nav navigation.Navigator, routes goSession.RoutesConfig) *Gate {
	return &Gate{src: src, nav: nav, routes: routes}
}

// Enter decides whether at may render and performs the redirect, if any.
func (g *Gate) Enter(ctx context.Context, at navigation.Location, required ...session.Role) Decision {
	return g.apply(ctx, g.src.State(), at, required)
}

func (g *Gate) apply(ctx context.Context, st goSession.State, at navigation.Location, required []session.Role) Decision {
	d := Decide(st, at, required, g.routes)
	if d.Redirect() && g.nav != nil {
		g.nav.Navigate(ctx, d.Target, d.Replace)
	}
	return d
}

// Follow re-evaluates the location returned by current on every change
// published by src, calling onDecision (if non-nil) with each result. It
// evaluates once immediately and returns a function that stops following.
func (g *Gate) Follow(ctx context.Context, src Subscriber, current func() navigation.Location, onDecision func(Decision), required ...session.Role) (stop func()) {
	handle := func(st goSession.State) {
		d := g.apply(ctx, st, current(), required)
		if onDecision != nil {
			onDecision(d)
		}
	}

	cancel := src.Subscribe(handle)
	handle(src.State())
	return cancel
}
