package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-dav-sync/models"
)

// The sync counter is a single-row table; bumping it inside the same
// transaction as the entry mutation is what makes sync ids globally
// monotonic across the whole store. Both statements are parameterless, so
// they are shared verbatim between the PostgreSQL and SQLite dialects.
const (
	nextSyncID = `UPDATE sync_counter SET value = value + 1 WHERE id = 1 RETURNING value;`

	selectMaxSyncID = `SELECT value FROM sync_counter WHERE id = 1;`
)

var entryColumns = []string{"path", "parent_path", "is_folder", "size", "sync_id", "deleted", "updated_at"}

// upsertEntryConflict re-activates a tombstone when an entry is re-created at
// the same path. The "WHERE entries.deleted" guard makes creating over a live
// entry a no-op, which the repository reports as ErrEntryAlreadyExists.
const upsertEntryConflict = `ON CONFLICT(path) DO UPDATE SET
		parent_path = excluded.parent_path,
		is_folder = excluded.is_folder,
		size = excluded.size,
		sync_id = excluded.sync_id,
		deleted = excluded.deleted,
		updated_at = excluded.updated_at
	WHERE entries.deleted`

// buildListEntries builds the enumeration query: immediate children of
// parent when deep is false, the whole subtree when deep is true. The root
// ("" parent) with deep=true enumerates every entry in the store.
func (db *DB) buildListEntries(parent string, deep bool) (string, []any, error) {
	q := db.builder().Select("path", "sync_id").From("entries")

	if deep {
		if parent != "" {
			q = q.Where(sq.Like{"path": parent + "/%"})
		}
	} else {
		q = q.Where(sq.Eq{"parent_path": parent})
	}

	return q.ToSql()
}

func (db *DB) buildResolveEntry(path string) (string, []any, error) {
	return db.builder().
		Select(entryColumns...).
		From("entries").
		Where(sq.Eq{"path": path}).
		ToSql()
}

func (db *DB) buildUpsertEntry(entry models.Entry) (string, []any, error) {
	return db.builder().
		Insert("entries").
		Columns(entryColumns...).
		Values(entry.Path, entry.ParentPath, entry.IsFolder, entry.Size, entry.SyncID, entry.Deleted, entry.UpdatedAt).
		Suffix(upsertEntryConflict).
		ToSql()
}

func (db *DB) buildUpdateEntry(path string, size, syncID int64, updatedAt time.Time) (string, []any, error) {
	return db.builder().
		Update("entries").
		Set("size", size).
		Set("sync_id", syncID).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"path": path, "deleted": false}).
		ToSql()
}

func (db *DB) buildTombstoneEntry(path string, syncID int64, updatedAt time.Time) (string, []any, error) {
	return db.builder().
		Update("entries").
		Set("deleted", true).
		Set("sync_id", syncID).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"path": path, "deleted": false}).
		ToSql()
}

func (db *DB) buildListChildren(parent string) (string, []any, error) {
	return db.builder().
		Select(entryColumns...).
		From("entries").
		Where(sq.Like{"path": parent + "/%"}).
		Where(sq.Eq{"deleted": false}).
		ToSql()
}

func (db *DB) buildPurgeTombstones(cutoff time.Time) (string, []any, error) {
	return db.builder().
		Delete("entries").
		Where(sq.Eq{"deleted": true}).
		Where(sq.Lt{"updated_at": cutoff}).
		ToSql()
}

func (db *DB) buildFindCredential(username string) (string, []any, error) {
	return db.builder().
		Select("username", "password", "roles").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
}
