// Package events provides a typed in-process publish/subscribe bus.
//
// Independent UI regions (header badge, wishlist page, session-aware chrome)
// observe session and wishlist changes through named topics instead of
// sharing state. Topics carry typed payloads, so a publisher and its
// subscribers agree on the payload shape at compile time.
package events

import (
	"sync"
)

// Bus dispatches published payloads to topic subscribers.
// Delivery is synchronous and in subscription order; subscribers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(any)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]func(any))}
}

// Topic is a named channel for payloads of type T.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic. The name is used only for registry identity.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic's registry name.
func (t Topic[T]) Name() string { return t.name }

// Publish delivers payload to every current subscriber of topic.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	if b == nil {
		return
	}
	b.mu.RLock()
	fns := make([]func(any), 0, len(b.subs[topic.name]))
	for _, fn := range b.subs[topic.name] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}

// Subscribe registers fn for topic and returns a cancel function.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) func() {
	if b == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[topic.name] == nil {
		b.subs[topic.name] = make(map[int]func(any))
	}
	b.subs[topic.name][id] = func(payload any) {
		if typed, ok := payload.(T); ok {
			fn(typed)
		}
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[topic.name], id)
		b.mu.Unlock()
	}
}
