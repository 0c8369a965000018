// Package alert moves sensor alerts and per-tick state rows from the
// simulator to their consumers: in-process subscribers, the alert backend
// and the observation sinks.
package alert

import (
	"sync"

	"wildfire-sim/internal/sensor"
)

// Bus is a publish/subscribe channel for alerts. Publish calls every
// subscriber synchronously on the caller's goroutine, so subscribers must
// not block.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]func(sensor.Alert)
	nextID int
	closed bool
}

// NewBus returns an open Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(sensor.Alert))}
}

// Subscribe registers fn and returns a function that removes it.
// Subscribing to a closed bus is a no-op.
func (b *Bus) Subscribe(fn func(sensor.Alert)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers a to every subscriber and returns how many received it.
func (b *Bus) Publish(a sensor.Alert) int {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return 0
	}
	fns := make([]func(sensor.Alert), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(a)
	}
	return len(fns)
}

// Subscribers returns the number of registered subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close drops every subscriber. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.subs = make(map[int]func(sensor.Alert))
	b.mu.Unlock()
}
