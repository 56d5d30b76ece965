// Package schedule provides cancellable deferred callbacks. Callbacks always
// run on the owner's control thread: Manual runs them inside Advance, and
// Realtime delivers them on a channel the owner drains.
package schedule

import "time"

// Handle refers to one scheduled callback.
type Handle interface {
	// Cancel prevents the callback from running. It returns true only if
	// the callback had not run yet and now never will.
	Cancel() bool
}

// Scheduler schedules fn to run once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Handle
}

const (
	statePending int32 = iota
	stateFired
	stateCancelled
)

// Group tracks the handles scheduled for one owner (a dialogue session) so
// they can all be cancelled together.
type Group struct {
	s       Scheduler
	handles []Handle
}

// NewGroup creates a group scheduling through s.
func NewGroup(s Scheduler) *Group {
	return &Group{s: s}
}

// AfterFunc schedules fn and remembers the handle.
func (g *Group) AfterFunc(d time.Duration, fn func()) Handle {
	h := g.s.AfterFunc(d, fn)
	g.handles = append(g.handles, h)
	return h
}

// CancelAll cancels every handle of the group and returns how many
// callbacks were prevented from running.
func (g *Group) CancelAll() int {
	n := 0
	for _, h := range g.handles {
		if h.Cancel() {
			n++
		}
	}
	g.handles = nil
	return n
}

// Len returns the number of handles scheduled since the last CancelAll.
func (g *Group) Len() int { return len(g.handles) }
