package history

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/config"
	"github.com/jmylchreest/saveconnectd/internal/events"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

type fakeWriter struct {
	mu     sync.Mutex
	points []*write.Point
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reading(code int) accessory.ReadingEvent {
	mode := saveconnect.ClassifyActiveMode(code)
	return accessory.ReadingEvent{
		ID:   "dev-1",
		Host: "192.168.1.20",
		Reading: saveconnect.Reading{
			Code:  code,
			Mode:  mode,
			State: saveconnect.SwitchStateFor(mode),
			At:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func tags(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fields(p *write.Point) map[string]any {
	out := map[string]any{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestReadingPoint(t *testing.T) {
	p := ReadingPoint(reading(saveconnect.ActiveRefresh))

	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, map[string]string{"device_id": "dev-1", "host": "192.168.1.20", "mode": "refresh"}, tags(p))

	f := fields(p)
	assert.EqualValues(t, 3, f["code"])
	assert.Equal(t, true, f["refresh"])
	assert.Equal(t, false, f["crowded"])
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), p.Time())
}

func TestRecorderAttach(t *testing.T) {
	w := &fakeWriter{}
	bus := events.NewBus()
	detach := NewRecorder(w, testLogger()).Attach(bus)

	bus.Publish(events.NewEvent(events.ModeRead, reading(saveconnect.ActiveCrowded)))
	bus.Publish(events.NewEvent(events.SwitchChanged, map[string]any{"id": "dev-1"}))
	bus.Publish(events.NewEvent(events.ModeRead, reading(1)))

	require.Len(t, w.points, 2)
	assert.Equal(t, "crowded", tags(w.points[0])["mode"])
	assert.Equal(t, "auto", tags(w.points[1])["mode"])

	detach()
	bus.Publish(events.NewEvent(events.ModeRead, reading(1)))
	assert.Len(t, w.points, 2)
}

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false}, testLogger())
	assert.ErrorIs(t, err, ErrDisabled)
}
