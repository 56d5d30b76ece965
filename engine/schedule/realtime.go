package schedule

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Realtime schedules callbacks on wall-clock timers. A due callback is not
// run on the timer goroutine: it is delivered on C() and the owner runs it
// on its own control thread.
type Realtime struct {
	c         chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewRealtime creates a realtime scheduler whose delivery channel holds up
// to buffer callbacks.
func NewRealtime(buffer int) *Realtime {
	return &Realtime{
		c:    make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

type realtimeHandle struct {
	state atomic.Int32
	timer *time.Timer
	fn    func()
}

func (h *realtimeHandle) Cancel() bool {
	if !h.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	return true
}

// fire runs fn unless the handle was cancelled after delivery.
func (h *realtimeHandle) fire() {
	if h.state.CompareAndSwap(statePending, stateFired) {
		h.fn()
	}
}

// AfterFunc schedules fn to be delivered on C() after d.
func (r *Realtime) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	h := &realtimeHandle{fn: fn}
	h.timer = time.AfterFunc(d, func() {
		if h.state.Load() != statePending {
			return
		}
		select {
		case r.c <- h.fire:
		case <-r.done:
		}
	})
	return h
}

// C delivers due callbacks. The owner must call each one it receives.
func (r *Realtime) C() <-chan func() { return r.c }

// Close stops delivery. Timers still running drop their callbacks.
func (r *Realtime) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}
