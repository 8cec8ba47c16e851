// Package events provides an in-process event bus used to fan accessory and
// switch changes out to the WebSocket hub, the MQTT bridge and the history
// recorder.
package events

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// EventType identifies the kind of event.
type EventType string

const (
	// Accessory lifecycle
	AccessoryAdded    EventType = "accessory.added"
	AccessoryRestored EventType = "accessory.restored"
	AccessoryRemoved  EventType = "accessory.removed"

	// Switch state
	SwitchChanged EventType = "switch.changed"
	ModeRead      EventType = "mode.read"

	// Discovery
	DiscoveryCompleted EventType = "discovery.completed"
)

// Event is a single event emitted by a producer.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event, marshaling data to JSON.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// Decode unmarshals the event data into v
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// SubscriberFunc is a callback invoked for each event.
// Implementations must not block; slow subscribers should buffer internally.
type SubscriberFunc func(Event)

// Bus is a synchronous fan-out event bus. Publish returns once every
// subscriber has been called.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]SubscriberFunc
	nextID      int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]SubscriberFunc),
	}
}

// Subscribe registers a callback and returns an unsubscribe function.
func (b *Bus) Subscribe(fn SubscriberFunc) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
}

// SubscribeTo registers a callback that only sees the listed event types.
func (b *Bus) SubscribeTo(fn SubscriberFunc, types ...EventType) func() {
	return b.Subscribe(func(e Event) {
		if slices.Contains(types, e.Type) {
			fn(e)
		}
	})
}

// Publish sends an event to all current subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]SubscriberFunc, 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
