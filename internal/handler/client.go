package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"helmetkiosk/internal/logger"
)

// Upgrader upgrades HTTP connections to WebSocket. The kiosk page is served
// from the same origin, so the default origin check applies.
var Upgrader = websocket.Upgrader{}

// ViewWebsocketHandler registers the operator page with the hub. The viewer
// first receives the full kiosk state, then every later event.
func ViewWebsocketHandler(kiosk Kiosk, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub := kiosk.GetWebsocketService()
		hub.Register(connection, kiosk.Greeting())
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Warning("Viewer disconnected: %v", err)
				}
				return
			}
		}
	}
}
