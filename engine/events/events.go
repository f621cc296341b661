// Package events implements single-pass event dispatch to subscribers.
// Handlers observe events; they cannot emit new ones.
package events

import "github.com/nathoo/miniquest/types"

// Handler observes a single event.
type Handler func(types.Event)

// Bus routes emitted events to subscribed handlers.
type Bus struct {
	byType map[string][]Handler
	all    []Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{byType: map[string][]Handler{}}
}

// On subscribes h to events of the given type.
func (b *Bus) On(eventType string, h Handler) {
	b.byType[eventType] = append(b.byType[eventType], h)
}

// OnAll subscribes h to every event.
func (b *Bus) OnAll(h Handler) {
	b.all = append(b.all, h)
}

// Dispatch delivers events in order. Single pass, no recursion. Returns
// the number of handler invocations.
func Dispatch(b *Bus, evts []types.Event) int {
	if b == nil {
		return 0
	}
	calls := 0
	for _, e := range evts {
		for _, h := range b.byType[e.Type] {
			h(e)
			calls++
		}
		for _, h := range b.all {
			h(e)
			calls++
		}
	}
	return calls
}
