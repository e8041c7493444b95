package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

// entryRepository is the SQL-backed implementation of [EntryRepository].
// It works over both dialects through the shared [DB] wrapper; every
// mutation runs in one transaction together with the sync-counter bump that
// assigns the affected rows their sync ids.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type entryRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewEntryRepository constructs an [EntryRepository] backed by the provided
// database connection and logger.
func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	logger.Debug().Msg("creating entry repository")
	return &entryRepository{
		db:     db,
		logger: logger,
	}
}

// ListEntries implements EntryRepository.
func (r *entryRepository) ListEntries(ctx context.Context, parent string, deep bool) ([]models.EntryRef, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildListEntries(parent, deep)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error enumerating entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var refs []models.EntryRef
	for rows.Next() {
		var ref models.EntryRef
		if err := rows.Scan(&ref.Path, &ref.SyncID); err != nil {
			log.Err(err).Str("func", "*entryRepository.ListEntries").Msg("error scanning entry ref")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return refs, nil
}

// Resolve implements EntryRepository.
func (r *entryRepository) Resolve(ctx context.Context, path string) (models.Entry, error) {
	query, args, err := r.db.buildResolveEntry(path)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var entry models.Entry
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&entry.Path, &entry.ParentPath, &entry.IsFolder, &entry.Size, &entry.SyncID, &entry.Deleted, &entry.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, ErrEntryNotFound
		}
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

// CreateEntry implements EntryRepository. Creating over a tombstone
// re-activates the path; creating over a live entry fails with
// ErrEntryAlreadyExists.
func (r *entryRepository) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	syncID, err := nextSyncIDTx(ctx, tx)
	if err != nil {
		return models.Entry{}, err
	}

	entry.ParentPath = parentOf(entry.Path)
	entry.SyncID = syncID
	entry.Deleted = false
	entry.UpdatedAt = time.Now().UTC()

	query, args, err := r.db.buildUpsertEntry(entry)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.CreateEntry").Str("path", entry.Path).Msg("error creating entry")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		// The conflict target held a live entry, so the guarded upsert
		// changed nothing.
		return models.Entry{}, ErrEntryAlreadyExists
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return entry, nil
}

// UpdateEntry implements EntryRepository.
func (r *entryRepository) UpdateEntry(ctx context.Context, path string, size int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	syncID, err := nextSyncIDTx(ctx, tx)
	if err != nil {
		return models.Entry{}, err
	}

	updatedAt := time.Now().UTC()
	query, args, err := r.db.buildUpdateEntry(path, size, syncID, updatedAt)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.UpdateEntry").Str("path", path).Msg("error updating entry")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return models.Entry{}, ErrEntryNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return models.Entry{
		Path:       path,
		ParentPath: parentOf(path),
		Size:       size,
		SyncID:     syncID,
		UpdatedAt:  updatedAt,
	}, nil
}

// MoveEntry implements EntryRepository. The source row (and every live child
// for folder moves) is tombstoned under its own fresh sync id, and a live
// copy is created under the destination path with another fresh sync id, so
// clients see the move as a deletion plus a creation ordered after it.
// A destination path occupied by a live entry fails the whole move with
// ErrEntryAlreadyExists; tombstoned destinations are re-activated.
func (r *entryRepository) MoveEntry(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	source, err := r.resolveLiveTx(ctx, tx, sourcePath)
	if err != nil {
		return models.Entry{}, err
	}

	toMove := []models.Entry{source}
	if source.IsFolder {
		children, err := r.listChildrenTx(ctx, tx, sourcePath)
		if err != nil {
			return models.Entry{}, err
		}
		toMove = append(toMove, children...)
	}

	var moved models.Entry
	for _, entry := range toMove {
		newPath := destinationPath + strings.TrimPrefix(entry.Path, sourcePath)

		if err := r.tombstoneTx(ctx, tx, entry.Path); err != nil {
			log.Err(err).Str("func", "*entryRepository.MoveEntry").Str("path", entry.Path).Msg("error tombstoning source")
			return models.Entry{}, err
		}

		syncID, err := nextSyncIDTx(ctx, tx)
		if err != nil {
			return models.Entry{}, err
		}

		created := models.Entry{
			Path:       newPath,
			ParentPath: parentOf(newPath),
			IsFolder:   entry.IsFolder,
			Size:       entry.Size,
			SyncID:     syncID,
			UpdatedAt:  time.Now().UTC(),
		}

		query, args, err := r.db.buildUpsertEntry(created)
		if err != nil {
			return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Err(err).Str("func", "*entryRepository.MoveEntry").Str("path", newPath).Msg("error creating destination")
			return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return models.Entry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if affected == 0 {
			// A live entry already occupies the destination path; the
			// guarded upsert changed nothing. Rolling back undoes the
			// source tombstones.
			return models.Entry{}, ErrEntryAlreadyExists
		}

		if entry.Path == sourcePath {
			moved = created
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return moved, nil
}

// DeleteEntry implements EntryRepository. The entry and, for folders, all
// live children become tombstones, each under its own fresh sync id.
func (r *entryRepository) DeleteEntry(ctx context.Context, path string) (models.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	entry, err := r.resolveLiveTx(ctx, tx, path)
	if err != nil {
		return models.Entry{}, err
	}

	toDelete := []models.Entry{entry}
	if entry.IsFolder {
		children, err := r.listChildrenTx(ctx, tx, path)
		if err != nil {
			return models.Entry{}, err
		}
		toDelete = append(toDelete, children...)
	}

	for _, e := range toDelete {
		if err := r.tombstoneTx(ctx, tx, e.Path); err != nil {
			return models.Entry{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	entry.Deleted = true
	return entry, nil
}

// MaxSyncID implements EntryRepository.
func (r *entryRepository) MaxSyncID(ctx context.Context) (int64, error) {
	var max int64
	if err := r.db.QueryRowContext(ctx, selectMaxSyncID).Scan(&max); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return max, nil
}

// PurgeTombstones implements EntryRepository.
func (r *entryRepository) PurgeTombstones(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildPurgeTombstones(cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*entryRepository.PurgeTombstones").Msg("error purging tombstones")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return purged, nil
}

// nextSyncIDTx draws the next sync id from the store-wide counter within tx.
func nextSyncIDTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var syncID int64
	if err := tx.QueryRowContext(ctx, nextSyncID).Scan(&syncID); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return syncID, nil
}

// resolveLiveTx loads one live (non-tombstone) entry within tx.
func (r *entryRepository) resolveLiveTx(ctx context.Context, tx *sql.Tx, path string) (models.Entry, error) {
	query, args, err := r.db.buildResolveEntry(path)
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var entry models.Entry
	row := tx.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&entry.Path, &entry.ParentPath, &entry.IsFolder, &entry.Size, &entry.SyncID, &entry.Deleted, &entry.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, ErrEntryNotFound
		}
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	if entry.Deleted {
		return models.Entry{}, ErrEntryNotFound
	}

	return entry, nil
}

// listChildrenTx loads every live entry strictly below parent within tx.
func (r *entryRepository) listChildrenTx(ctx context.Context, tx *sql.Tx, parent string) ([]models.Entry, error) {
	query, args, err := r.db.buildListChildren(parent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var children []models.Entry
	for rows.Next() {
		var entry models.Entry
		if err := rows.Scan(&entry.Path, &entry.ParentPath, &entry.IsFolder, &entry.Size, &entry.SyncID, &entry.Deleted, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		children = append(children, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return children, nil
}

// tombstoneTx marks one live entry deleted within tx under a fresh sync id.
func (r *entryRepository) tombstoneTx(ctx context.Context, tx *sql.Tx, path string) error {
	syncID, err := nextSyncIDTx(ctx, tx)
	if err != nil {
		return err
	}

	query, args, err := r.db.buildTombstoneEntry(path, syncID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// parentOf returns the folder part of a slash-separated path, "" for
// root-level items.
func parentOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}
