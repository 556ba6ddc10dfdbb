// Package eventbus carries pipeline lifecycle events. The bus is constructed
// explicitly and handed to its users; there is no process-wide instance.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus is a thin wrapper around EventBus.
type Bus struct {
	bus evbus.Bus
}

func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers an event to all synchronous subscribers.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers a synchronous handler.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler that runs in its own goroutine per event.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// WaitAsync blocks until all async handlers have finished.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
