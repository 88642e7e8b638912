// Package events provides a typed publish-subscribe bus.
package events

import "sync"

// Subscription allows unsubscribing from a Bus.
type Subscription[T any] struct {
	id uint64
}

// Bus delivers events of type T to its subscribers. The zero value is not usable; use NewBus.
type Bus[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	order  []uint64
	subs   map[uint64]func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[uint64]func(T))}
}

func (b *Bus[T]) Subscribe(callback func(evt T)) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[b.nextID] = callback
	b.order = append(b.order, b.nextID)
	return &Subscription[T]{id: b.nextID}
}

// Unsubscribe removes the given subscription. Unknown or repeated unsubscribes are ignored.
func (b *Bus[T]) Unsubscribe(sub *Subscription[T]) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	for i, id := range b.order {
		if id == sub.id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Emit notifies all subscribers in subscription order. Callbacks run synchronously on the
// caller's goroutine, so they have all returned by the time Emit does.
func (b *Bus[T]) Emit(evt T) {
	b.mu.RLock()
	callbacks := make([]func(T), 0, len(b.order))
	for _, id := range b.order {
		callbacks = append(callbacks, b.subs[id])
	}
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb(evt)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
