package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

func TestIssueToken(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	ctx := context.WithValue(req.Context(), utils.PrincipalCtxKey, models.Principal{Name: "User1"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	env.handler.issueToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if response.Token != "signed-for-User1" {
		t.Errorf("unexpected token: %q", response.Token)
	}
}

func TestIssueToken_NoPrincipal(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	rec := httptest.NewRecorder()
	env.handler.issueToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
