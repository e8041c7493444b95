package service

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/models"
)

type entryService struct {
	logger          *logger.Logger
	entryRepository store.EntryRepository
}

// NewEntryService constructs the mutation service over the entry store.
func NewEntryService(entryRepository store.EntryRepository, logger *logger.Logger) EntryService {
	logger.Debug().Msg("creating entry service")
	return &entryService{
		logger:          logger,
		entryRepository: entryRepository,
	}
}

// CreateEntry implements EntryService.
func (s *entryService) CreateEntry(ctx context.Context, path string, isFolder bool, size int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	normalized, err := normalizePath(path)
	if err != nil {
		return models.Entry{}, err
	}

	created, err := s.entryRepository.CreateEntry(ctx, models.Entry{
		Path:     normalized,
		IsFolder: isFolder,
		Size:     size,
	})
	if err != nil {
		log.Err(err).Str("func", "*entryService.CreateEntry").Str("path", normalized).Msg("error creating entry")
		return models.Entry{}, err
	}

	return created, nil
}

// UpdateEntry implements EntryService.
func (s *entryService) UpdateEntry(ctx context.Context, path string, size int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	normalized, err := normalizePath(path)
	if err != nil {
		return models.Entry{}, err
	}

	updated, err := s.entryRepository.UpdateEntry(ctx, normalized, size)
	if err != nil {
		log.Err(err).Str("func", "*entryService.UpdateEntry").Str("path", normalized).Msg("error updating entry")
		return models.Entry{}, err
	}

	return updated, nil
}

// MoveEntry implements EntryService.
func (s *entryService) MoveEntry(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error) {
	log := logger.FromContext(ctx)

	source, err := normalizePath(sourcePath)
	if err != nil {
		return models.Entry{}, err
	}
	destination, err := normalizePath(destinationPath)
	if err != nil {
		return models.Entry{}, err
	}
	if source == destination || strings.HasPrefix(destination, source+"/") {
		return models.Entry{}, ErrInvalidPath
	}

	moved, err := s.entryRepository.MoveEntry(ctx, source, destination)
	if err != nil {
		log.Err(err).
			Str("func", "*entryService.MoveEntry").
			Str("source", source).
			Str("destination", destination).
			Msg("error moving entry")
		return models.Entry{}, err
	}

	return moved, nil
}

// DeleteEntry implements EntryService.
func (s *entryService) DeleteEntry(ctx context.Context, path string) (models.Entry, error) {
	log := logger.FromContext(ctx)

	normalized, err := normalizePath(path)
	if err != nil {
		return models.Entry{}, err
	}

	deleted, err := s.entryRepository.DeleteEntry(ctx, normalized)
	if err != nil {
		log.Err(err).Str("func", "*entryService.DeleteEntry").Str("path", normalized).Msg("error deleting entry")
		return models.Entry{}, err
	}

	return deleted, nil
}

// GetEntry implements EntryService.
func (s *entryService) GetEntry(ctx context.Context, path string) (models.Entry, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return models.Entry{}, err
	}

	return s.entryRepository.Resolve(ctx, normalized)
}

// normalizePath strips leading/trailing slashes and rejects empty paths and
// relative segments, so that "docs/a.txt" and "/docs/a.txt/" address the same
// entry.
func normalizePath(path string) (string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", ErrInvalidPath
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", ErrInvalidPath
		}
	}
	return trimmed, nil
}
