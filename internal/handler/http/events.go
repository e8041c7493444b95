package http

import (
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
)

// subscribeToEvents serves GET /api/events: a Server-Sent Events stream of
// change notifications. The response stays open until the client disconnects
// or the publisher evicts the subscriber.
func (h *Handler) subscribeToEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink, err := notify.NewSSESink(w)
	if err != nil {
		log.Err(err).Str("func", "*Handler.subscribeToEvents").Msg("streaming unsupported")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id, err := h.publisher.Subscribe(sink)
	if err != nil {
		log.Err(err).Str("func", "*Handler.subscribeToEvents").Msg("subscription rejected")
		return
	}
	defer h.publisher.Unsubscribe(id)

	log.Debug().Str("subscriber", id).Msg("sse subscriber connected")

	select {
	case <-r.Context().Done():
	case <-sink.Done():
	}
}
