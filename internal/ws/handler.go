package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/saveconnectd/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is meant for the local network; there is no auth layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FilterFromQuery builds a Filter from ?types=a,b&accessory=id.
func FilterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	var f Filter
	for t := range strings.SplitSeq(q.Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			f.Types = append(f.Types, events.EventType(t))
		}
	}
	f.Accessory = strings.TrimSpace(q.Get("accessory"))
	return f
}

// Handler returns an http.HandlerFunc that upgrades connections to WebSocket
// and registers the client with the hub.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := FilterFromQuery(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("ws: upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		client := hub.NewClient(conn, filter)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
