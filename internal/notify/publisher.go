// Package notify implements the change-notification publisher: a fan-out hub
// that pushes change events to every connected subscriber over its own
// transport (WebSocket or Server-Sent Events) and evicts subscribers whose
// connections are no longer writable.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

// Sink is one subscriber connection. Implementations wrap a concrete
// transport; Write must not be called concurrently (the publisher serializes
// writes per subscriber).
type Sink interface {
	// Write pushes one event to the subscriber. The write must complete
	// before deadline; implementations arm the underlying connection's
	// write deadline from it.
	Write(event models.ChangeEvent, deadline time.Time) error

	// Close releases the underlying connection. Called exactly once, either
	// on eviction or on publisher shutdown.
	Close() error
}

type subscriber struct {
	id   string
	sink Sink

	// mu serializes writes to the sink so events reach each subscriber in
	// publish order.
	mu sync.Mutex
}

// Publisher fans change events out to the current subscriber set. Delivery
// is best effort: a subscriber that errors or exceeds the write timeout is
// closed and removed, and the event keeps flowing to the remaining
// subscribers.
type Publisher struct {
	logger       *logger.Logger
	idGenerator  *utils.UUIDGenerator
	writeTimeout time.Duration

	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool

	// publishMu keeps concurrent Publish calls from interleaving, so every
	// subscriber observes events in one global order.
	publishMu sync.Mutex
}

// NewPublisher constructs a Publisher with the given per-subscriber write
// timeout.
func NewPublisher(writeTimeout time.Duration, logger *logger.Logger) *Publisher {
	logger.Debug().Dur("write_timeout", writeTimeout).Msg("creating notification publisher")
	return &Publisher{
		logger:       logger,
		idGenerator:  utils.NewUUIDGenerator(),
		writeTimeout: writeTimeout,
		subscribers:  make(map[string]*subscriber),
	}
}

// Subscribe registers sink and returns its subscriber id. The id is used to
// unsubscribe when the connection goes away on the transport side.
func (p *Publisher) Subscribe(sink Sink) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", ErrPublisherClosed
	}

	id := p.idGenerator.Generate()
	p.subscribers[id] = &subscriber{id: id, sink: sink}

	p.logger.Debug().Str("subscriber", id).Int("total", len(p.subscribers)).Msg("subscriber registered")

	return id, nil
}

// Unsubscribe removes the subscriber and closes its sink. Unknown ids are
// ignored, so transports can unconditionally unsubscribe on teardown even if
// the publisher already evicted them.
func (p *Publisher) Unsubscribe(id string) {
	p.mu.Lock()
	sub, ok := p.subscribers[id]
	if ok {
		delete(p.subscribers, id)
	}
	p.mu.Unlock()

	if ok {
		_ = sub.sink.Close()
		p.logger.Debug().Str("subscriber", id).Msg("subscriber removed")
	}
}

// Count returns the number of currently connected subscribers.
func (p *Publisher) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

// Publish delivers event to every connected subscriber. Failed subscribers
// are evicted; Publish itself never returns a delivery error.
func (p *Publisher) Publish(ctx context.Context, event models.ChangeEvent) {
	log := logger.FromContext(ctx)

	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	p.mu.RLock()
	snapshot := make([]*subscriber, 0, len(p.subscribers))
	for _, sub := range p.subscribers {
		snapshot = append(snapshot, sub)
	}
	p.mu.RUnlock()

	deadline := time.Now().Add(p.writeTimeout)

	var dead []string
	for _, sub := range snapshot {
		sub.mu.Lock()
		err := sub.sink.Write(event, deadline)
		sub.mu.Unlock()

		if err != nil {
			log.Debug().
				Err(err).
				Str("func", "*Publisher.Publish").
				Str("subscriber", sub.id).
				Msg("evicting unwritable subscriber")
			dead = append(dead, sub.id)
		}
	}

	for _, id := range dead {
		p.Unsubscribe(id)
	}

	log.Debug().
		Str("event", string(event.EventType)).
		Str("folder", event.FolderPath).
		Int("delivered", len(snapshot)-len(dead)).
		Int("evicted", len(dead)).
		Msg("change event published")
}

// Close evicts every subscriber and rejects future subscriptions. Used on
// server shutdown so hanging connections do not keep the process alive.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	remaining := p.subscribers
	p.subscribers = make(map[string]*subscriber)
	p.mu.Unlock()

	for _, sub := range remaining {
		_ = sub.sink.Close()
	}
}
