package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

func TestCreateItem_PublishesEvent(t *testing.T) {
	env := newTestEnv()
	env.entries.entry = models.Entry{Path: "docs/a.txt", ParentPath: "docs", SyncID: 7}

	sink := &recordingSink{}
	if _, err := env.publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := strings.NewReader(`{"Path":"docs/a.txt","Size":42}`)
	req := httptest.NewRequest(http.MethodPost, "/api/items", body)
	rec := httptest.NewRecorder()
	env.handler.createItem(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	events := sink.received()
	if len(events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(events))
	}
	if events[0].EventType != models.EventCreated {
		t.Errorf("expected Created event, got %q", events[0].EventType)
	}
	if events[0].FolderPath != "docs" {
		t.Errorf("event must carry the parent folder, got %q", events[0].FolderPath)
	}
}

func TestCreateItem_InvalidJSON(t *testing.T) {
	env := newTestEnv()

	sink := &recordingSink{}
	if _, err := env.publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.handler.createItem(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(sink.received()) != 0 {
		t.Error("failed mutation must not publish an event")
	}
}

func TestCreateItem_Conflict(t *testing.T) {
	env := newTestEnv()
	env.entries.err = store.ErrEntryAlreadyExists

	body := strings.NewReader(`{"Path":"docs/a.txt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/items", body)
	rec := httptest.NewRecorder()
	env.handler.createItem(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestMoveItem_EventCarriesSourceAndClientID(t *testing.T) {
	env := newTestEnv()
	env.entries.entry = models.Entry{Path: "archive/a.txt", ParentPath: "archive", SyncID: 9}

	sink := &recordingSink{}
	if _, err := env.publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := strings.NewReader(`{"SourcePath":"docs/a.txt","DestinationPath":"archive/a.txt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/items/move", body)
	// the client id middleware normally populates this
	req = req.WithContext(context.WithValue(req.Context(), utils.ClientIDCtxKey, "client-42"))
	rec := httptest.NewRecorder()
	env.handler.moveItem(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	events := sink.received()
	if len(events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(events))
	}
	event := events[0]
	if event.EventType != models.EventMoved {
		t.Errorf("expected Moved event, got %q", event.EventType)
	}
	if event.SourcePath != "docs/a.txt" {
		t.Errorf("expected source path in event, got %q", event.SourcePath)
	}
	if event.FolderPath != "archive" {
		t.Errorf("expected destination parent folder, got %q", event.FolderPath)
	}
	if event.OriginatingClientID != "client-42" {
		t.Errorf("expected originating client id, got %q", event.OriginatingClientID)
	}
}

func TestDeleteItem_NotFound(t *testing.T) {
	env := newTestEnv()
	env.entries.err = store.ErrEntryNotFound

	sink := &recordingSink{}
	if _, err := env.publisher.Subscribe(sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := strings.NewReader(`{"Path":"missing.txt"}`)
	req := httptest.NewRequest(http.MethodDelete, "/api/items", body)
	rec := httptest.NewRecorder()
	env.handler.deleteItem(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(sink.received()) != 0 {
		t.Error("failed deletion must not publish an event")
	}
}

func TestGetItem_NotFound(t *testing.T) {
	env := newTestEnv()
	env.entries.err = store.ErrEntryNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/items?path=missing.txt", nil)
	rec := httptest.NewRecorder()
	env.handler.getItem(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
