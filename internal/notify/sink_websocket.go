package notify

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-dav-sync/models"
)

// WebSocketSink delivers change events over one WebSocket connection as JSON
// text messages.
type WebSocketSink struct {
	conn *websocket.Conn
}

// NewWebSocketSink wraps an upgraded WebSocket connection.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Write implements Sink.
func (s *WebSocketSink) Write(event models.ChangeEvent, deadline time.Time) error {
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteJSON(event)
}

// Close implements Sink.
func (s *WebSocketSink) Close() error {
	// best effort: tell the peer we are going away before dropping the TCP
	// connection
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(time.Second),
	)
	return s.conn.Close()
}
