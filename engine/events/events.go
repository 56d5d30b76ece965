// Package events implements the publish/subscribe bus the dialogue manager
// emits its lifecycle events on. Delivery is synchronous: Publish returns
// after every matching handler has run.
package events

import (
	"sync"

	"github.com/nathoo/parley/types"
)

// Handler receives one event.
type Handler func(types.Event)

type subscription struct {
	id      int
	filter  map[types.EventType]bool // nil = every type
	handler Handler
}

// Bus is a registered handler list.
type Bus struct {
	mu   sync.Mutex
	subs []subscription
	next int
}

// NewBus creates a bus without handlers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for the given event types, or for every type when
// none are given. The returned func unregisters it; calling it twice is a
// no-op.
func (b *Bus) Subscribe(h Handler, only ...types.EventType) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	sub := subscription{id: b.next, handler: h}
	if len(only) > 0 {
		sub.filter = map[types.EventType]bool{}
		for _, t := range only {
			sub.filter[t] = true
		}
	}
	b.subs = append(b.subs, sub)

	id := sub.id
	return func() { b.remove(id) }
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to the handlers registered when Publish was called, in
// registration order.
func (b *Bus) Publish(e types.Event) {
	b.mu.Lock()
	snapshot := make([]subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		if s.filter != nil && !s.filter[e.Type] {
			continue
		}
		s.handler(e)
	}
}

// Len returns the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
