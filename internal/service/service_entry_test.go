package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

// recordingEntryRepository captures the paths the service hands to the store
// so tests can assert on normalization.
type recordingEntryRepository struct {
	fakeEntryRepository

	createdPath string
	movedFrom   string
	movedTo     string
}

func (r *recordingEntryRepository) CreateEntry(_ context.Context, entry models.Entry) (models.Entry, error) {
	r.createdPath = entry.Path
	return entry, nil
}

func (r *recordingEntryRepository) MoveEntry(_ context.Context, sourcePath, destinationPath string) (models.Entry, error) {
	r.movedFrom = sourcePath
	r.movedTo = destinationPath
	return models.Entry{Path: destinationPath}, nil
}

func newTestEntryService(repo *recordingEntryRepository) EntryService {
	return NewEntryService(repo, logger.NewLogger("test"))
}

func TestCreateEntry_NormalizesPath(t *testing.T) {
	repo := &recordingEntryRepository{}
	svc := newTestEntryService(repo)

	if _, err := svc.CreateEntry(context.Background(), "/docs/a.txt/", false, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.createdPath != "docs/a.txt" {
		t.Errorf("expected normalized path, got %q", repo.createdPath)
	}
}

func TestCreateEntry_InvalidPaths(t *testing.T) {
	svc := newTestEntryService(&recordingEntryRepository{})
	ctx := context.Background()

	for _, path := range []string{"", "/", "docs//a.txt", "docs/../etc", "./docs", "docs/."} {
		if _, err := svc.CreateEntry(ctx, path, false, 0); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("path %q: expected ErrInvalidPath, got %v", path, err)
		}
	}
}

func TestMoveEntry_RejectsMoveIntoOwnSubtree(t *testing.T) {
	svc := newTestEntryService(&recordingEntryRepository{})
	ctx := context.Background()

	if _, err := svc.MoveEntry(ctx, "docs", "docs/inner"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
	if _, err := svc.MoveEntry(ctx, "docs", "docs"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath for identity move, got %v", err)
	}
}

func TestMoveEntry_NormalizesBothPaths(t *testing.T) {
	repo := &recordingEntryRepository{}
	svc := newTestEntryService(repo)

	if _, err := svc.MoveEntry(context.Background(), "/docs/a.txt", "archive/a.txt/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.movedFrom != "docs/a.txt" || repo.movedTo != "archive/a.txt" {
		t.Errorf("unexpected paths: %q -> %q", repo.movedFrom, repo.movedTo)
	}
}
