// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Entry is a single item of the synchronized tree as the storage layer sees
// it: a file or folder path together with the change-sequence number assigned
// by the last mutation that touched it.
//
// Deleted entries are kept as tombstone rows so that incremental
// synchronization can report deletions to clients; a tombstone keeps the
// sync id of the deletion itself.
type Entry struct {
	// Path is the slash-separated path of the item relative to the
	// synchronization root (e.g. "docs/report.txt").
	Path string `json:"path"`

	// ParentPath is the path of the containing folder (""
	// for items directly under the root).
	ParentPath string `json:"-"`

	// IsFolder reports whether the entry is a collection.
	IsFolder bool `json:"is_folder"`

	// Size is the content length in bytes; zero for folders.
	Size int64 `json:"size"`

	// SyncID is the globally monotonic change-sequence number assigned on
	// the most recent create, update, move, or delete of this entry.
	SyncID int64 `json:"sync_id"`

	// Deleted marks the entry as a tombstone. Tombstones are surfaced in
	// incremental sync responses and dropped from full-sync responses.
	Deleted bool `json:"deleted"`

	// UpdatedAt is the server-side timestamp of the last mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryRef is the lightweight (path, sync id) pair produced by tree
// enumeration. The synchronization engine filters refs by SyncID first and
// resolves only the survivors to full [Entry] descriptors.
type EntryRef struct {
	Path   string `json:"path"`
	SyncID int64  `json:"sync_id"`
}
