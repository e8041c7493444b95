// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// ChangeBatch is the answer to one "what changed since token T" query.
//
// Items are ordered by ascending SyncID. NewSyncToken is the watermark the
// client must echo back on its next incremental request; when MoreResults is
// true the client should immediately re-query with the same token it sent to
// receive the remainder of the batch.
type ChangeBatch struct {
	// Items are the changed entries, ascending by SyncID.
	Items []Entry `json:"items"`

	// NewSyncToken is the opaque watermark for the next incremental query.
	// Clients must treat it as opaque and echo it back verbatim.
	NewSyncToken string `json:"new_sync_token"`

	// MoreResults is true when the batch was truncated by the requested
	// limit and more changes are available under the same token.
	MoreResults bool `json:"more_results"`

	// Length is the total number of entries in Items.
	Length int `json:"length"`
}
