package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-dav-sync/models"
)

// Listen implements [ServerAdapter]. It dials the server's WebSocket
// endpoint with the bearer token from the completed handshake and invokes
// onEvent for every change notification.
//
// Events carrying this client's own id are dropped: they are the echo of
// mutations the client itself just performed.
//
// Listen blocks until ctx is cancelled (returns ctx.Err()) or the connection
// drops (returns the read error).
func (h *httpServerAdapter) Listen(ctx context.Context, onEvent func(models.ChangeEvent)) error {
	endpoint, err := h.websocketURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	if token := h.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	if h.credentials.ClientID != "" {
		header.Set("X-Client-Id", h.credentials.ClientID)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	h.logger.Debug().Str("endpoint", endpoint).Msg("listening for change notifications")

	// unblock the read loop when the caller cancels
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var event models.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("websocket read: %w", err)
		}

		if h.credentials.ClientID != "" && event.OriginatingClientID == h.credentials.ClientID {
			continue
		}

		onEvent(event)
	}
}

// websocketURL rewrites the configured http(s) base URL into the ws(s)
// endpoint.
func (h *httpServerAdapter) websocketURL() (string, error) {
	base := h.client.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws", nil
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws", nil
	default:
		return "", fmt.Errorf("unsupported base url scheme: %s", base)
	}
}
