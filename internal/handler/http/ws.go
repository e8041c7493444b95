package http

import (
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
)

// subscribeToWebSocket serves GET /ws: upgrades the connection and streams
// change notifications as JSON text messages until the peer goes away.
func (h *Handler) subscribeToWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request with an error status
		log.Err(err).Str("func", "*Handler.subscribeToWebSocket").Msg("websocket upgrade failed")
		return
	}

	id, err := h.publisher.Subscribe(notify.NewWebSocketSink(conn))
	if err != nil {
		log.Err(err).Str("func", "*Handler.subscribeToWebSocket").Msg("subscription rejected")
		_ = conn.Close()
		return
	}
	defer h.publisher.Unsubscribe(id)

	log.Debug().Str("subscriber", id).Msg("websocket subscriber connected")

	// Inbound messages are ignored; the read loop only detects when the
	// peer closes the connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Debug().Str("subscriber", id).Msg("websocket subscriber disconnected")
			return
		}
	}
}
