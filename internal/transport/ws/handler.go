package ws

import (
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket. Sessions
// start anonymous; identity arrives with the join event.
func ServeWS(hub *Hub, marker ReadMarker, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Warnw("ws accept", "err", err)
			return
		}

		client := NewClient(hub, marker, conn, log)

		go client.WritePump()
		go client.ReadPump()
	}
}
