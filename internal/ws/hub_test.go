package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/saveconnectd/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func startTestHub(t *testing.T) (*Hub, *events.Bus, context.CancelFunc) {
	t.Helper()
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	return hub, bus, cancel
}

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(Handler(hub, testLogger()))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dialWS(t *testing.T, hub *Hub, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	before := hub.ClientCount()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server)+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() > before }, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt events.Event
	require.NoError(t, json.Unmarshal(msg, &evt))
	return evt
}

type switchData struct {
	ID     string `json:"id"`
	Switch string `json:"switch"`
	On     bool   `json:"on"`
}

// --- Hub lifecycle tests ---

func TestNewHub_SubscribesToBus(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)

	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.unsub)
	assert.Equal(t, 1, bus.Len())
}

func TestHub_RunUnsubscribesOnStop(t *testing.T) {
	bus := events.NewBus()
	hub := NewHub(testLogger(), bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 0, bus.Len())
}

func TestHub_ClientCount(t *testing.T) {
	hub, _, _ := startTestHub(t)
	server := startTestServer(t, hub)

	conn1 := dialWS(t, hub, server, "")
	dialWS(t, hub, server, "")
	assert.Equal(t, 2, hub.ClientCount())

	conn1.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

// --- Event broadcasting tests ---

func TestHub_BroadcastsSwitchChange(t *testing.T) {
	hub, bus, _ := startTestHub(t)
	server := startTestServer(t, hub)
	conn := dialWS(t, hub, server, "")

	bus.Publish(events.NewEvent(events.SwitchChanged, switchData{ID: "acc-1", Switch: "refresh", On: true}))

	evt := readEvent(t, conn)
	assert.Equal(t, events.SwitchChanged, evt.Type)

	var data switchData
	require.NoError(t, evt.Decode(&data))
	assert.Equal(t, "acc-1", data.ID)
	assert.Equal(t, "refresh", data.Switch)
	assert.True(t, data.On)
}

func TestHub_BroadcastsToMultipleClients(t *testing.T) {
	hub, bus, _ := startTestHub(t)
	server := startTestServer(t, hub)
	conn1 := dialWS(t, hub, server, "")
	conn2 := dialWS(t, hub, server, "")

	bus.Publish(events.NewEvent(events.AccessoryAdded, map[string]string{"id": "acc-1"}))

	var wg sync.WaitGroup
	var evt1, evt2 events.Event
	wg.Go(func() { evt1 = readEvent(t, conn1) })
	wg.Go(func() { evt2 = readEvent(t, conn2) })
	wg.Wait()

	assert.Equal(t, events.AccessoryAdded, evt1.Type)
	assert.Equal(t, events.AccessoryAdded, evt2.Type)
}

func TestHub_PreservesEventOrder(t *testing.T) {
	hub, bus, _ := startTestHub(t)
	server := startTestServer(t, hub)
	conn := dialWS(t, hub, server, "")

	types := []events.EventType{
		events.AccessoryAdded,
		events.ModeRead,
		events.SwitchChanged,
	}
	for _, et := range types {
		bus.Publish(events.NewEvent(et, nil))
	}

	var received []events.EventType
	for range types {
		received = append(received, readEvent(t, conn).Type)
	}
	assert.Equal(t, types, received)
}

func TestHub_TypeFilter(t *testing.T) {
	hub, bus, _ := startTestHub(t)
	server := startTestServer(t, hub)
	conn := dialWS(t, hub, server, "?types=switch.changed")

	bus.Publish(events.NewEvent(events.ModeRead, map[string]string{"id": "acc-1"}))
	bus.Publish(events.NewEvent(events.SwitchChanged, map[string]string{"id": "acc-1"}))

	assert.Equal(t, events.SwitchChanged, readEvent(t, conn).Type)
}

func TestHub_AccessoryFilter(t *testing.T) {
	hub, bus, _ := startTestHub(t)
	server := startTestServer(t, hub)
	conn := dialWS(t, hub, server, "?accessory=acc-2")

	bus.Publish(events.NewEvent(events.SwitchChanged, switchData{ID: "acc-1", Switch: "refresh"}))
	bus.Publish(events.NewEvent(events.DiscoveryCompleted, map[string]int{"count": 2}))
	bus.Publish(events.NewEvent(events.SwitchChanged, switchData{ID: "acc-2", Switch: "crowded"}))

	// Unscoped events pass the accessory filter.
	assert.Equal(t, events.DiscoveryCompleted, readEvent(t, conn).Type)

	evt := readEvent(t, conn)
	var data switchData
	require.NoError(t, evt.Decode(&data))
	assert.Equal(t, "acc-2", data.ID)
}

func TestFilterFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/ws?types=switch.changed,+mode.read,&accessory=abc", nil)
	f := FilterFromQuery(r)
	assert.Equal(t, []events.EventType{events.SwitchChanged, events.ModeRead}, f.Types)
	assert.Equal(t, "abc", f.Accessory)

	empty := FilterFromQuery(httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))
	assert.Empty(t, empty.Types)
	assert.Empty(t, empty.Accessory)
}

func TestFilter_Match(t *testing.T) {
	m := message{typ: events.ModeRead, accessory: "a"}
	assert.True(t, Filter{}.match(m))
	assert.True(t, Filter{Types: []events.EventType{events.ModeRead}}.match(m))
	assert.False(t, Filter{Types: []events.EventType{events.SwitchChanged}}.match(m))
	assert.True(t, Filter{Accessory: "a"}.match(m))
	assert.False(t, Filter{Accessory: "b"}.match(m))
	assert.True(t, Filter{Accessory: "b"}.match(message{typ: events.DiscoveryCompleted}))
}

// --- Handler tests ---

func TestHandler_NonWebSocketRequest(t *testing.T) {
	hub, _, _ := startTestHub(t)
	server := startTestServer(t, hub)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// gorilla/websocket returns 400 Bad Request for non-upgrade requests
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, _, cancel := startTestHub(t)
	server := startTestServer(t, hub)
	conn := dialWS(t, hub, server, "")

	cancel()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	hub := NewHub(testLogger(), events.NewBus())

	client := hub.NewClient(nil, Filter{Accessory: "x"})
	assert.Equal(t, hub, client.hub)
	assert.Equal(t, "x", client.filter.Accessory)
	assert.Equal(t, sendBufferSize, cap(client.send))
}
