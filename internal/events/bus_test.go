package events

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(SwitchChanged, map[string]any{"id": "acc-1", "on": true})

	assert.Equal(t, SwitchChanged, e.Type)
	assert.False(t, e.Timestamp.IsZero())

	var data struct {
		ID string `json:"id"`
		On bool   `json:"on"`
	}
	require.NoError(t, e.Decode(&data))
	assert.Equal(t, "acc-1", data.ID)
	assert.True(t, data.On)
}

func TestNewEventUnmarshalable(t *testing.T) {
	e := NewEvent(ModeRead, make(chan int))
	assert.JSONEq(t, "null", string(e.Data))
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	var received []Event
	var mu sync.Mutex

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})
	assert.Equal(t, 1, bus.Len())

	bus.Publish(NewEvent(AccessoryAdded, "hello"))
	bus.Publish(NewEvent(AccessoryRemoved, "goodbye"))

	mu.Lock()
	require.Len(t, received, 2)
	assert.Equal(t, AccessoryAdded, received[0].Type)
	assert.Equal(t, AccessoryRemoved, received[1].Type)
	mu.Unlock()

	unsub()
	assert.Equal(t, 0, bus.Len())
	bus.Publish(NewEvent(DiscoveryCompleted, nil))

	mu.Lock()
	assert.Len(t, received, 2)
	mu.Unlock()
}

func TestBusSubscribeTo(t *testing.T) {
	bus := NewBus()
	var switches, all atomic.Int32

	unsubSwitch := bus.SubscribeTo(func(Event) { switches.Add(1) }, SwitchChanged, ModeRead)
	unsubAll := bus.Subscribe(func(Event) { all.Add(1) })

	bus.Publish(NewEvent(SwitchChanged, nil))
	bus.Publish(NewEvent(ModeRead, nil))
	bus.Publish(NewEvent(AccessoryAdded, nil))

	assert.Equal(t, int32(2), switches.Load())
	assert.Equal(t, int32(3), all.Load())

	unsubSwitch()
	bus.Publish(NewEvent(SwitchChanged, nil))
	assert.Equal(t, int32(2), switches.Load())
	unsubAll()
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish(NewEvent(SwitchChanged, nil)) })
}
