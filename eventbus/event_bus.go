// Package eventbus is a thread-safe publish/subscribe hub, adapted from the
// teacher's shared/event_bus. No other rovmesh package publishes to or
// subscribes on it; the scheduler, httpapi and terminal do not use it.
package eventbus

import (
	"github.com/google/uuid"

	"rovmesh/collections"
)

// Event is anything that can be published on the bus, identified by a
// string type so subscribers don't need to import every publisher's types.
type Event interface {
	Type() string
}

// Handler receives events of the type it subscribed to.
type Handler func(event Event)

// Subscriber identifies one registered handler. Comparable, so it can key a
// map; the handler function itself is stored alongside, not inside it.
type Subscriber struct {
	ID string
}

// NewSubscriber mints a fresh subscriber handle.
func NewSubscriber() Subscriber {
	return Subscriber{ID: uuid.New().String()}
}

// Bus is a thread-safe event bus. Publishing to a type with no subscribers
// is a no-op; handlers run in their own goroutine so a slow subscriber never
// blocks the publisher.
type Bus struct {
	subscriptions *collections.SafeMap[string, *collections.SafeSet[Subscriber]]
	handlers      *collections.SafeMap[Subscriber, Handler]
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{
		subscriptions: collections.NewSafeMap[string, *collections.SafeSet[Subscriber]](),
		handlers:      collections.NewSafeMap[Subscriber, Handler](),
	}
}

// Subscribe registers handler for eventType and returns the subscriber
// handle to later Unsubscribe with.
func (b *Bus) Subscribe(eventType string, handler Handler) Subscriber {
	sub := NewSubscriber()
	b.handlers.Set(sub, handler)

	set := b.subscriptions.GetOrDefault(eventType, collections.NewSafeSet[Subscriber]())
	set.Add(sub)

	return sub
}

// Unsubscribe removes sub from eventType and drops its stored handler.
func (b *Bus) Unsubscribe(eventType string, sub Subscriber) {
	if set, ok := b.subscriptions.Get(eventType); ok {
		set.Remove(sub)
	}
	b.handlers.Delete(sub)
}

// Publish delivers event to every subscriber of its type, each in its own
// goroutine.
func (b *Bus) Publish(event Event) {
	if event == nil {
		return
	}

	set, ok := b.subscriptions.Get(event.Type())
	if !ok {
		return
	}

	for _, sub := range set.Values() {
		if handler, ok := b.handlers.Get(sub); ok {
			go handler(event)
		}
	}
}
