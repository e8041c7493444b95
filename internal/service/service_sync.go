package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/models"
)

// syncService is the concrete implementation of SyncService.
//
// A query runs in three stages: enumerate the subtree (cheap path/sync-id
// pairs), filter refs by the token watermark, then resolve only the
// survivors to full entries with bounded parallelism. Per-entry resolve
// failures (the entry vanished mid-enumeration) drop that entry from the
// batch instead of aborting it.
type syncService struct {
	entryRepository store.EntryRepository

	// workerCap bounds concurrent per-entry resolves.
	workerCap int

	logger *logger.Logger
}

// NewSyncService constructs a SyncService over the given entry repository.
// cfg.WorkerCap bounds enumeration concurrency.
func NewSyncService(entryRepository store.EntryRepository, cfg config.Sync, logger *logger.Logger) SyncService {
	return &syncService{
		entryRepository: entryRepository,
		workerCap:       cfg.WorkerCap,
		logger:          logger,
	}
}

// GetChanges implements SyncService.
//
// Token semantics: "" means full synchronization (watermark 0); any other
// value must parse as a decimal sync id or the query fails with
// ErrInvalidSyncToken.
//
// Limit semantics: negative — no pagination; zero — pure token probe (empty
// item list, token = maximum sync id over the whole enumerated set);
// positive — page size, with MoreResults set when the page was truncated.
//
// The returned token is the maximum sync id among the returned items, or the
// caller's own token unchanged when nothing is returned, so that re-querying
// with the result of an empty batch stays an empty batch.
func (s *syncService) GetChanges(ctx context.Context, path, syncToken string, deep bool, limit int) (models.ChangeBatch, error) {
	log := logger.FromContext(ctx)

	var minSyncID int64
	if syncToken != "" {
		parsed, err := strconv.ParseInt(syncToken, 10, 64)
		if err != nil || parsed < 0 {
			log.Debug().Str("token", syncToken).Msg("unparseable sync token")
			return models.ChangeBatch{}, ErrInvalidSyncToken
		}
		minSyncID = parsed
	}

	refs, err := s.entryRepository.ListEntries(ctx, path, deep)
	if err != nil {
		return models.ChangeBatch{}, fmt.Errorf("error enumerating entries: %w", err)
	}

	// Token probe: no items, just the current watermark over the whole
	// (unfiltered) set. Computed from zero, not the caller's token: a
	// token above the store's maximum must not be echoed back.
	if limit == 0 {
		var maxSyncID int64
		for _, ref := range refs {
			if ref.SyncID > maxSyncID {
				maxSyncID = ref.SyncID
			}
		}
		return models.ChangeBatch{
			Items:        []models.Entry{},
			NewSyncToken: strconv.FormatInt(maxSyncID, 10),
		}, nil
	}

	changed := refs[:0:0]
	for _, ref := range refs {
		if ref.SyncID > minSyncID {
			changed = append(changed, ref)
		}
	}

	items, err := s.resolveAll(ctx, changed)
	if err != nil {
		return models.ChangeBatch{}, err
	}

	// Full sync must not surface tombstones of items the client never saw.
	if minSyncID == 0 {
		live := items[:0]
		for _, item := range items {
			if !item.Deleted {
				live = append(live, item)
			}
		}
		items = live
	}

	sort.Slice(items, func(i, j int) bool { return items[i].SyncID < items[j].SyncID })

	moreResults := false
	if limit > 0 && limit < len(items) {
		items = items[:limit]
		moreResults = true
	}

	newSyncToken := syncToken
	if len(items) > 0 {
		newSyncToken = strconv.FormatInt(items[len(items)-1].SyncID, 10)
	}

	return models.ChangeBatch{
		Items:        items,
		NewSyncToken: newSyncToken,
		MoreResults:  moreResults,
		Length:       len(items),
	}, nil
}

// resolveAll resolves refs to full entries with at most workerCap concurrent
// repository reads. A ref whose entry cannot be resolved is skipped; only a
// cancelled context aborts the whole batch.
func (s *syncService) resolveAll(ctx context.Context, refs []models.EntryRef) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	var mu sync.Mutex
	items := make([]models.Entry, 0, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCap)

	for _, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			entry, err := s.entryRepository.Resolve(gctx, ref.Path)
			if err != nil {
				// The entry vanished mid-enumeration; exclude it.
				log.Debug().Str("path", ref.Path).Err(err).Msg("entry resolve failed, skipping")
				return nil
			}

			mu.Lock()
			items = append(items, entry)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return items, nil
}
