package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
)

// purgeWorker periodically removes tombstones older than the configured
// retention window. Clients that come back with a sync token older than the
// window miss the purged deletions, which is why incremental synchronization
// is only guaranteed within the retention period.
type purgeWorker struct {
	entryRepository store.EntryRepository
	retention       time.Duration
	interval        time.Duration
	logger          *logger.Logger
}

func newPurgeWorker(entryRepository store.EntryRepository, cfg config.Sync, logger *logger.Logger) *purgeWorker {
	return &purgeWorker{
		entryRepository: entryRepository,
		retention:       cfg.TombstoneRetention,
		interval:        cfg.PurgeInterval,
		logger:          logger,
	}
}

// Run implements Worker.
func (w *purgeWorker) Run(ctx context.Context) {
	if w.retention <= 0 || w.interval <= 0 {
		w.logger.Info().Msg("tombstone purge worker disabled")
		return
	}

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("retention", w.retention).
		Msg("starting tombstone purge worker")

	go w.loop(ctx)
}

func (w *purgeWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("tombstone purge worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *purgeWorker) purge(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.retention)

	purged, err := w.entryRepository.PurgeTombstones(ctx, cutoff)
	if err != nil {
		w.logger.Err(err).Str("func", "*purgeWorker.purge").Msg("error purging tombstones")
		return
	}

	if purged > 0 {
		w.logger.Info().Int64("purged", purged).Time("cutoff", cutoff).Msg("tombstones purged")
	}
}
