package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-dav-sync/internal/service"
	"github.com/MKhiriev/go-dav-sync/models"
)

func TestGetChanges_ParamsPassedThrough(t *testing.T) {
	env := newTestEnv()
	env.sync.batch = models.ChangeBatch{
		Items:        []models.Entry{{Path: "docs/a.txt", SyncID: 4}},
		NewSyncToken: "4",
		Length:       1,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sync?path=docs&token=2&deep=true&limit=50", nil)
	rec := httptest.NewRecorder()
	env.handler.getChanges(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.sync.gotPath != "docs" || env.sync.gotToken != "2" || !env.sync.gotDeep || env.sync.gotLimit != 50 {
		t.Errorf("unexpected query forwarding: path=%q token=%q deep=%t limit=%d",
			env.sync.gotPath, env.sync.gotToken, env.sync.gotDeep, env.sync.gotLimit)
	}

	var batch models.ChangeBatch
	if err := json.NewDecoder(rec.Body).Decode(&batch); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if batch.NewSyncToken != "4" || batch.Length != 1 {
		t.Errorf("unexpected response body: %+v", batch)
	}
}

func TestGetChanges_NoLimitMeansUnpaginated(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	rec := httptest.NewRecorder()
	env.handler.getChanges(rec, req)

	if env.sync.gotLimit != -1 {
		t.Errorf("expected limit=-1 without a limit parameter, got %d", env.sync.gotLimit)
	}
}

func TestGetChanges_DefaultLimitApplied(t *testing.T) {
	env := newTestEnv()
	env.handler.defaultLimit = 100

	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	rec := httptest.NewRecorder()
	env.handler.getChanges(rec, req)

	if env.sync.gotLimit != 100 {
		t.Errorf("expected configured default limit 100, got %d", env.sync.gotLimit)
	}
}

func TestGetChanges_ZeroLimitIsTokenProbe(t *testing.T) {
	env := newTestEnv()
	env.handler.defaultLimit = 100

	req := httptest.NewRequest(http.MethodGet, "/api/sync?limit=0", nil)
	rec := httptest.NewRecorder()
	env.handler.getChanges(rec, req)

	if env.sync.gotLimit != 0 {
		t.Errorf("explicit limit=0 must reach the service as 0, got %d", env.sync.gotLimit)
	}
}

func TestGetChanges_BadLimit(t *testing.T) {
	env := newTestEnv()

	for _, limit := range []string{"abc", "-1", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/sync?limit="+limit, nil)
		rec := httptest.NewRecorder()
		env.handler.getChanges(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected 400, got %d", limit, rec.Code)
		}
	}
}

func TestGetChanges_InvalidTokenMapsTo400(t *testing.T) {
	env := newTestEnv()
	env.sync.err = service.ErrInvalidSyncToken

	req := httptest.NewRequest(http.MethodGet, "/api/sync?token=garbage", nil)
	rec := httptest.NewRecorder()
	env.handler.getChanges(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
