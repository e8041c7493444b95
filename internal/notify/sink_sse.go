package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-dav-sync/models"
)

// SSESink delivers change events over one Server-Sent Events response
// stream. The owning HTTP handler keeps the response open for the lifetime
// of the subscription; the response writer is only valid until that handler
// returns, so Close waits for any in-flight Write and every later Write
// fails without touching the response.
type SSESink struct {
	mu     sync.Mutex
	closed bool

	w          http.ResponseWriter
	controller *http.ResponseController
	done       chan struct{}
}

// NewSSESink wraps a streaming HTTP response. Returns an error when the
// underlying writer cannot flush, which means the connection cannot carry an
// event stream at all.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	controller := http.NewResponseController(w)
	if err := controller.Flush(); err != nil {
		return nil, fmt.Errorf("response writer does not support streaming: %w", err)
	}

	return &SSESink{
		w:          w,
		controller: controller,
		done:       make(chan struct{}),
	}, nil
}

// Write implements Sink. Writes racing with Close serialize on the sink
// mutex; once Close wins, Write reports ErrSinkClosed so the publisher
// evicts the subscriber.
func (s *SSESink) Write(event models.ChangeEvent, deadline time.Time) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}

	if err := s.controller.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: change\ndata: %s\n\n", payload); err != nil {
		return err
	}

	return s.controller.Flush()
}

// Close implements Sink. It blocks until an in-flight Write has finished, so
// the handler's teardown path cannot leave a write running against a dead
// response. Idempotent.
func (s *SSESink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}

// Done is closed when the sink is evicted or the publisher shuts down. The
// SSE handler selects on it to unblock and finish the response.
func (s *SSESink) Done() <-chan struct{} {
	return s.done
}
