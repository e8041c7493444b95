package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

type fakeSink struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	fail   bool
	closed bool
}

func (s *fakeSink) Write(event models.ChangeEvent, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("connection reset")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) received() []models.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChangeEvent(nil), s.events...)
}

func newTestPublisher() *Publisher {
	return NewPublisher(time.Second, logger.NewLogger("test"))
}

func TestPublish_FanOut(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	first, second := &fakeSink{}, &fakeSink{}
	if _, err := publisher.Subscribe(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := publisher.Subscribe(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event := models.ChangeEvent{EventType: models.EventCreated, FolderPath: "docs"}
	publisher.Publish(ctx, event)

	for i, sink := range []*fakeSink{first, second} {
		got := sink.received()
		if len(got) != 1 {
			t.Fatalf("subscriber %d: expected 1 event, got %d", i, len(got))
		}
		if got[0].EventType != models.EventCreated || got[0].FolderPath != "docs" {
			t.Errorf("subscriber %d: unexpected event %+v", i, got[0])
		}
	}
}

func TestPublish_EvictsFailedSubscriberOnly(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	healthy1 := &fakeSink{}
	broken := &fakeSink{fail: true}
	healthy2 := &fakeSink{}

	for _, sink := range []*fakeSink{healthy1, broken, healthy2} {
		if _, err := publisher.Subscribe(sink); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	publisher.Publish(ctx, models.ChangeEvent{EventType: models.EventUpdated, FolderPath: "docs"})

	if publisher.Count() != 2 {
		t.Fatalf("expected 2 remaining subscribers, got %d", publisher.Count())
	}
	if !broken.closed {
		t.Error("failed subscriber's sink must be closed on eviction")
	}
	if len(healthy1.received()) != 1 || len(healthy2.received()) != 1 {
		t.Error("healthy subscribers must still receive the event")
	}

	// the evicted subscriber stays gone on the next publish
	publisher.Publish(ctx, models.ChangeEvent{EventType: models.EventDeleted, FolderPath: "docs"})
	if len(broken.received()) != 0 {
		t.Error("evicted subscriber must not receive further events")
	}
	if len(healthy1.received()) != 2 {
		t.Errorf("expected 2 events for healthy subscriber, got %d", len(healthy1.received()))
	}
}

func TestPublish_OrderPreserved(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	sink := &fakeSink{}
	if _, err := publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		publisher.Publish(ctx, models.ChangeEvent{
			EventType:  models.EventUpdated,
			FolderPath: fmt.Sprintf("folder-%d", i),
		})
	}

	got := sink.received()
	if len(got) != 10 {
		t.Fatalf("expected 10 events, got %d", len(got))
	}
	for i, event := range got {
		if want := fmt.Sprintf("folder-%d", i); event.FolderPath != want {
			t.Errorf("event %d: expected %q, got %q", i, want, event.FolderPath)
		}
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	publisher := newTestPublisher()

	sink := &fakeSink{}
	id, err := publisher.Subscribe(sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	publisher.Unsubscribe(id)
	publisher.Unsubscribe(id) // second call must be a no-op

	if publisher.Count() != 0 {
		t.Errorf("expected 0 subscribers, got %d", publisher.Count())
	}
	if !sink.closed {
		t.Error("unsubscribed sink must be closed")
	}
}

func TestPublish_ConcurrentSubscribeAndPublish(t *testing.T) {
	publisher := newTestPublisher()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := publisher.Subscribe(&fakeSink{})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			publisher.Publish(ctx, models.ChangeEvent{EventType: models.EventRefresh, FolderPath: ""})
			publisher.Unsubscribe(id)
		}()
	}
	wg.Wait()

	if publisher.Count() != 0 {
		t.Errorf("expected 0 subscribers after teardown, got %d", publisher.Count())
	}
}

func TestSubscribe_AfterClose(t *testing.T) {
	publisher := newTestPublisher()

	sink := &fakeSink{}
	if _, err := publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	publisher.Close()

	if !sink.closed {
		t.Error("existing sinks must be closed on publisher shutdown")
	}
	if _, err := publisher.Subscribe(&fakeSink{}); !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("expected ErrPublisherClosed, got %v", err)
	}
}
