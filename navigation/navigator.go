package navigation

import (
	"context"
	"sync"
)

// Navigator performs programmatic navigation. With replace set, the current
// history entry is overwritten instead of a new one being pushed.
type Navigator interface {
	Navigate(ctx context.Context, to Location, replace bool)
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(ctx context.Context, to Location, replace bool)

func (f NavigatorFunc) Navigate(ctx context.Context, to Location, replace bool) { f(ctx, to, replace) }

// History is an in-memory browser-like history stack. It is safe for
// concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []Location
}

// NewHistory returns a history positioned at start.
func NewHistory(start Location) *History {
	return &History{entries: []Location{start}}
}

// Navigate pushes to, or replaces the current entry when replace is set.
func (h *History) Navigate(_ context.Context, to Location, replace bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if replace && len(h.entries) > 0 {
		h.entries[len(h.entries)-1] = to
		return
	}
	h.entries = append(h.entries, to)
}

// Current returns the location at the top of the stack.
func (h *History) Current() Location {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return Location{}
	}
	return h.entries[len(h.entries)-1]
}

// Back pops the current entry. It reports false when only one entry remains.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) <= 1 {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []Location {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Location, len(h.entries))
	copy(out, h.entries)
	return out
}
