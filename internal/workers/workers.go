package workers

import (
	"context"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the background workers of the server: currently only
// the tombstone purge worker.
func NewWorkers(storages *store.Storages, cfg config.Sync, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			newPurgeWorker(storages.EntryRepository, cfg, logger),
		},
	}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
