package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-dav-sync/models"
)

// EntryRepository is the storage adapter behind the synchronization engine
// and the mutation endpoints.
//
// Every mutating method (Create, Update, Move, Delete) assigns the affected
// rows fresh sync ids drawn from a single database counter, so sync ids are
// strictly monotonic across the whole store, not just per entry. Deletions
// are recorded as tombstone rows that keep the sync id of the deletion.
type EntryRepository interface {
	// ListEntries enumerates the subtree under parent: immediate children
	// when deep is false, the full recursive descent when deep is true.
	// parent "" addresses the synchronization root.
	ListEntries(ctx context.Context, parent string, deep bool) ([]models.EntryRef, error)

	// Resolve loads the full descriptor (live or tombstone) for one path.
	// Returns ErrEntryNotFound when no row exists.
	Resolve(ctx context.Context, path string) (models.Entry, error)

	CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	UpdateEntry(ctx context.Context, path string, size int64) (models.Entry, error)

	// MoveEntry tombstones the source path(s) and re-creates the entry (and,
	// for folders, every child) under the destination path. Each affected
	// row gets its own fresh sync id.
	MoveEntry(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error)

	// DeleteEntry turns the entry (and, for folders, every child) into
	// tombstones.
	DeleteEntry(ctx context.Context, path string) (models.Entry, error)

	// MaxSyncID returns the highest sync id ever assigned by the store.
	MaxSyncID(ctx context.Context) (int64, error)

	// PurgeTombstones physically removes tombstones older than cutoff and
	// returns the number of purged rows.
	PurgeTombstones(ctx context.Context, cutoff time.Time) (int64, error)
}

// CredentialRepository backs the Digest authentication lookup.
type CredentialRepository interface {
	// FindByUsername returns the credential record for the given account
	// name (already stripped of any "domain\" prefix), or
	// ErrNoCredentialFound.
	FindByUsername(ctx context.Context, username string) (models.Credential, error)
}
