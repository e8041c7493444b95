// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating
// with the synchronization server.
//
// The primary abstraction is [ServerAdapter], which decouples the client
// runtime from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) that performs the Digest handshake,
// exchanges it for a bearer token, and listens for change notifications over
// WebSocket.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-dav-sync/models"
)

// ServerAdapter defines transport-agnostic communication with the
// synchronization server. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors to
// the sentinel values defined in this package.
type ServerAdapter interface {
	// Handshake authenticates against the server: it provokes a Digest
	// challenge, answers it with the configured credentials, and exchanges
	// the handshake for a bearer token attached to all subsequent requests.
	Handshake(ctx context.Context) error

	// Token returns the bearer token currently held by the adapter, or an
	// empty string before a successful Handshake.
	Token() string

	// GetVersion fetches the server build version. Does not require a
	// completed handshake.
	GetVersion(ctx context.Context) (string, error)

	// GetChanges runs one synchronization query. Token and limit semantics
	// follow the server: empty token for full sync, limit 0 for a token
	// probe, negative limit for an unpaginated query.
	GetChanges(ctx context.Context, path, syncToken string, deep bool, limit int) (models.ChangeBatch, error)

	CreateItem(ctx context.Context, path string, isFolder bool, size int64) (models.Entry, error)
	UpdateItem(ctx context.Context, path string, size int64) (models.Entry, error)
	MoveItem(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error)
	DeleteItem(ctx context.Context, path string) (models.Entry, error)

	// Listen opens the WebSocket notification stream and invokes onEvent for
	// every received change until ctx is cancelled or the connection drops.
	// Events originating from this client (matching its configured client
	// id) are filtered out.
	Listen(ctx context.Context, onEvent func(models.ChangeEvent)) error
}
