package history

import (
	"log/slog"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/events"
)

// Measurement is the InfluxDB measurement readings are written to
const Measurement = "ventilation_mode"

// PointWriter accepts points for asynchronous writing. api.WriteAPI
// satisfies it.
type PointWriter interface {
	WritePoint(point *write.Point)
}

// Recorder turns mode readings into points
type Recorder struct {
	w      PointWriter
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to w
func NewRecorder(w PointWriter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{w: w, logger: logger}
}

// Attach records every events.ModeRead published on bus. The returned func
// detaches the recorder.
func (r *Recorder) Attach(bus *events.Bus) func() {
	return bus.SubscribeTo(func(e events.Event) {
		var re accessory.ReadingEvent
		if err := e.Decode(&re); err != nil {
			r.logger.Warn("history: undecodable reading", "error", err)
			return
		}
		r.Record(re)
	}, events.ModeRead)
}

// Record writes one reading
func (r *Recorder) Record(re accessory.ReadingEvent) {
	r.w.WritePoint(ReadingPoint(re))
	r.logger.Debug("history: reading recorded", "id", re.ID, "code", re.Code)
}

// ReadingPoint builds the point for a reading
func ReadingPoint(re accessory.ReadingEvent) *write.Point {
	return write.NewPoint(
		Measurement,
		map[string]string{
			"device_id": re.ID,
			"host":      re.Host,
			"mode":      string(re.Mode),
		},
		map[string]any{
			"code":    re.Code,
			"refresh": re.State.Refresh,
			"crowded": re.State.Crowded,
		},
		re.At,
	)
}
