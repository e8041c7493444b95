package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
	"github.com/MKhiriev/go-dav-sync/internal/service"
	"github.com/MKhiriev/go-dav-sync/models"
)

// fakeAuthService accepts any Digest header unless failAuth is set, and any
// bearer token equal to validToken.
type fakeAuthService struct {
	failAuth   bool
	stale      bool
	validToken string
}

func (f *fakeAuthService) IsDigestAuthorization(authHeader string) bool {
	return strings.HasPrefix(strings.ToLower(authHeader), "digest")
}

func (f *fakeAuthService) Authenticate(_ context.Context, _, _ string) (models.Principal, bool, error) {
	if f.failAuth {
		return models.Principal{}, f.stale, service.ErrAuthenticationFailed
	}
	return models.Principal{Name: "User1", Roles: []string{"admin"}}, false, nil
}

func (f *fakeAuthService) Challenge(stale bool) string {
	if stale {
		return `Digest realm="test", nonce="n", stale=true`
	}
	return `Digest realm="test", nonce="n", stale=false`
}

func (f *fakeAuthService) CreateToken(_ context.Context, username string) (models.Token, error) {
	return models.Token{SignedString: "signed-for-" + username, Username: username}, nil
}

func (f *fakeAuthService) ParseToken(_ context.Context, tokenString string) (models.Token, error) {
	if tokenString != f.validToken {
		return models.Token{}, service.ErrTokenIsExpiredOrInvalid
	}
	return models.Token{Username: "User1"}, nil
}

type fakeSyncService struct {
	batch models.ChangeBatch
	err   error

	gotPath  string
	gotToken string
	gotDeep  bool
	gotLimit int
}

func (f *fakeSyncService) GetChanges(_ context.Context, path, syncToken string, deep bool, limit int) (models.ChangeBatch, error) {
	f.gotPath, f.gotToken, f.gotDeep, f.gotLimit = path, syncToken, deep, limit
	if f.err != nil {
		return models.ChangeBatch{}, f.err
	}
	return f.batch, nil
}

type fakeEntryService struct {
	entry models.Entry
	err   error
}

func (f *fakeEntryService) CreateEntry(_ context.Context, path string, isFolder bool, size int64) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	return f.entry, nil
}

func (f *fakeEntryService) UpdateEntry(_ context.Context, path string, size int64) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	return f.entry, nil
}

func (f *fakeEntryService) MoveEntry(_ context.Context, sourcePath, destinationPath string) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	return f.entry, nil
}

func (f *fakeEntryService) DeleteEntry(_ context.Context, path string) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	return f.entry, nil
}

func (f *fakeEntryService) GetEntry(_ context.Context, path string) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	return f.entry, nil
}

type fakeAppInfoService struct{}

func (f *fakeAppInfoService) GetAppVersion(context.Context) string { return "v1.2.3" }

// recordingSink collects published events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (s *recordingSink) Write(event models.ChangeEvent, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) received() []models.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChangeEvent(nil), s.events...)
}

type testEnv struct {
	handler   *Handler
	auth      *fakeAuthService
	sync      *fakeSyncService
	entries   *fakeEntryService
	publisher *notify.Publisher
}

func newTestEnv() *testEnv {
	log := logger.NewLogger("test")

	auth := &fakeAuthService{validToken: "good-token"}
	syncSvc := &fakeSyncService{}
	entries := &fakeEntryService{}
	publisher := notify.NewPublisher(time.Second, log)

	services := &service.Services{
		AuthService:    auth,
		SyncService:    syncSvc,
		EntryService:   entries,
		AppInfoService: &fakeAppInfoService{},
	}

	return &testEnv{
		handler:   NewHandler(services, publisher, config.Sync{}, log),
		auth:      auth,
		sync:      syncSvc,
		entries:   entries,
		publisher: publisher,
	}
}
