// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run(_ context.Context) {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := &Workers{workers: []Worker{w1, w2, w3}}
	ws.Run(context.Background())

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{workers: []Worker{}}

	// Should not panic on empty workers list
	ws.Run(context.Background())
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run(context.Background())
}

// fakeEntryRepository records purge calls; all other methods are unused by
// the purge worker.
type fakeEntryRepository struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (f *fakeEntryRepository) ListEntries(context.Context, string, bool) ([]models.EntryRef, error) {
	return nil, nil
}
func (f *fakeEntryRepository) Resolve(context.Context, string) (models.Entry, error) {
	return models.Entry{}, nil
}
func (f *fakeEntryRepository) CreateEntry(context.Context, models.Entry) (models.Entry, error) {
	return models.Entry{}, nil
}
func (f *fakeEntryRepository) UpdateEntry(context.Context, string, int64) (models.Entry, error) {
	return models.Entry{}, nil
}
func (f *fakeEntryRepository) MoveEntry(context.Context, string, string) (models.Entry, error) {
	return models.Entry{}, nil
}
func (f *fakeEntryRepository) DeleteEntry(context.Context, string) (models.Entry, error) {
	return models.Entry{}, nil
}
func (f *fakeEntryRepository) MaxSyncID(context.Context) (int64, error) { return 0, nil }

func (f *fakeEntryRepository) PurgeTombstones(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return 1, nil
}

func (f *fakeEntryRepository) purgeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestPurgeWorker_PurgesOnTicker(t *testing.T) {
	repo := &fakeEntryRepository{}
	worker := newPurgeWorker(repo, config.Sync{
		TombstoneRetention: time.Hour,
		PurgeInterval:      10 * time.Millisecond,
	}, logger.NewLogger("test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Run(ctx)

	deadline := time.After(2 * time.Second)
	for repo.purgeCalls() == 0 {
		select {
		case <-deadline:
			t.Fatal("purge worker never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	repo.mu.Lock()
	cutoff := repo.cutoffs[0]
	repo.mu.Unlock()

	// cutoff must trail now by roughly the retention window
	age := time.Since(cutoff)
	if age < 55*time.Minute || age > 65*time.Minute {
		t.Errorf("unexpected cutoff age: %v", age)
	}
}

func TestPurgeWorker_DisabledWithoutInterval(t *testing.T) {
	repo := &fakeEntryRepository{}
	worker := newPurgeWorker(repo, config.Sync{TombstoneRetention: time.Hour}, logger.NewLogger("test"))

	worker.Run(context.Background())

	time.Sleep(20 * time.Millisecond)
	if repo.purgeCalls() != 0 {
		t.Error("disabled worker must not purge")
	}
}
