package service

import (
	"context"

	"github.com/MKhiriev/go-dav-sync/models"
)

// AuthService gates every inbound request. It implements the RFC 2617 Digest
// handshake against the credential store and, as an alternative scheme,
// issues and validates JWT bearer tokens for clients that have already
// completed a Digest handshake.
type AuthService interface {
	// IsDigestAuthorization reports whether the given Authorization header
	// value carries Digest credentials (case-insensitive scheme match).
	IsDigestAuthorization(authHeader string) bool

	// Authenticate validates the Digest credentials of one request.
	// The returned stale flag is true when the credentials were otherwise
	// correct but the nonce had expired; callers must pass it to Challenge
	// so well-behaved clients retry without re-prompting the user.
	// All failure modes surface as ErrAuthenticationFailed.
	Authenticate(ctx context.Context, authHeader, httpMethod string) (models.Principal, bool, error)

	// Challenge builds the WWW-Authenticate header value for a 401 response,
	// embedding a freshly generated nonce and the given stale flag.
	Challenge(stale bool) string

	CreateToken(ctx context.Context, username string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// SyncService answers "what changed in this subtree since sync token T"
// queries with full and incremental semantics and pagination.
type SyncService interface {
	// GetChanges enumerates the subtree rooted at path (immediate children
	// when deep is false) and returns the entries whose sync id is greater
	// than the watermark encoded in syncToken.
	//
	// An empty syncToken requests full synchronization. limit semantics:
	// negative — unpaginated; zero — token probe (no items, just the
	// current maximum sync id); positive — page size.
	GetChanges(ctx context.Context, path, syncToken string, deep bool, limit int) (models.ChangeBatch, error)
}

// EntryService applies entry mutations for the HTTP surface. Paths are
// normalized ("/docs/a.txt/" and "docs/a.txt" address the same entry);
// malformed paths are rejected with ErrInvalidPath before the store is
// touched.
type EntryService interface {
	CreateEntry(ctx context.Context, path string, isFolder bool, size int64) (models.Entry, error)
	UpdateEntry(ctx context.Context, path string, size int64) (models.Entry, error)

	// MoveEntry relocates an entry (and, for folders, its whole subtree).
	// Moving an entry into its own subtree is rejected with ErrInvalidPath.
	MoveEntry(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error)

	DeleteEntry(ctx context.Context, path string) (models.Entry, error)
	GetEntry(ctx context.Context, path string) (models.Entry, error)
}

// AppInfoService exposes build/version metadata of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
