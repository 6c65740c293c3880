package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleEvents upgrades the request to a websocket and streams hub events as
// JSON until the client disconnects or the hub shuts down.
func HandleEvents(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the event stream", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("Event stream client connected")
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointEvents, true)
		}

		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)

		// Reader goroutine: its only job is noticing the disconnect. The
		// deferred Close unblocks it when the write side exits first.
		disconnected := make(chan struct{})
		go func() {
			defer close(disconnected)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					// Hub shut down, or dropped this client for falling behind.
					return
				}
				if err := sendJSON(ws, ev); err != nil {
					return
				}
			case <-disconnected:
				slog.Info("Event stream client disconnected")
				return
			}
		}
	}
}
