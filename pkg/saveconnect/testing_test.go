package saveconnect

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDevice records every request it receives and answers like a unit
type fakeDevice struct {
	mu       sync.Mutex
	paths    []string
	payloads []string
	accept   []string

	status     int    // response status, 200 when zero
	activeMode int    // value reported for 1160
	readBody   string // overrides the /mread body when set
}

func (d *fakeDevice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	d.paths = append(d.paths, r.URL.Path)
	d.payloads = append(d.payloads, payload)
	d.accept = append(d.accept, r.Header.Get("Accept"))
	status, mode, body := d.status, d.activeMode, d.readBody
	d.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, "boom", status)
		return
	}

	switch r.URL.Path {
	case "/mwrite":
		w.WriteHeader(http.StatusOK)
	case "/mread":
		w.Header().Set("Content-Type", "application/json")
		if body != "" {
			_, _ = io.WriteString(w, body)
			return
		}
		_, _ = fmt.Fprintf(w, `{"1160":%d}`, mode)
	default:
		http.NotFound(w, r)
	}
}

func (d *fakeDevice) requests() ([]string, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.paths...), append([]string(nil), d.payloads...)
}

func (d *fakeDevice) setStatus(status int) {
	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}

func (d *fakeDevice) setReadBody(body string) {
	d.mu.Lock()
	d.readBody = body
	d.mu.Unlock()
}

func (d *fakeDevice) acceptHeaders() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.accept...)
}

func (d *fakeDevice) setActiveMode(code int) {
	d.mu.Lock()
	d.activeMode = code
	d.mu.Unlock()
}

// newFakeDevice starts a fake unit and returns it with its host:port
func newFakeDevice(t *testing.T) (*fakeDevice, string) {
	t.Helper()
	d := &fakeDevice{}
	srv := httptest.NewServer(d)
	t.Cleanup(srv.Close)
	return d, strings.TrimPrefix(srv.URL, "http://")
}
