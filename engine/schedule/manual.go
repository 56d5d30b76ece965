package schedule

import (
	"container/heap"
	"time"
)

// Manual is a virtual clock. Nothing happens until Advance is called; due
// callbacks then run in due order (ties in scheduling order) on the caller's
// goroutine.
type Manual struct {
	now     time.Duration
	seq     uint64
	pending int
	timers  timerHeap
}

// NewManual creates a virtual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	m     *Manual
	due   time.Duration
	seq   uint64
	fn    func()
	state int32
}

func (t *manualTimer) Cancel() bool {
	if t.state != statePending {
		return false
	}
	t.state = stateCancelled
	t.m.pending--
	return true
}

// AfterFunc schedules fn at Now()+d. Negative d is treated as zero.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now + d, seq: m.seq, fn: fn}
	heap.Push(&m.timers, t)
	m.pending++
	return t
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration { return m.now }

// Pending returns the number of callbacks that have neither run nor been
// cancelled.
func (m *Manual) Pending() int { return m.pending }

// Advance moves the clock forward by d, running every callback that becomes
// due, including callbacks scheduled by other callbacks inside the window.
// It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := m.now + d
	ran := 0
	for len(m.timers) > 0 {
		next := m.timers[0]
		if next.due > target {
			break
		}
		heap.Pop(&m.timers)
		if next.state != statePending {
			continue
		}
		m.now = next.due
		next.state = stateFired
		m.pending--
		next.fn()
		ran++
	}
	m.now = target
	return ran
}

// timerHeap orders timers by due time, then scheduling order.
type timerHeap []*manualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*manualTimer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
