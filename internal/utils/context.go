// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, JWT token generation and validation,
// and other common operations.
package utils

import (
	"context"

	"github.com/MKhiriev/go-dav-sync/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PrincipalCtxKey is the key used to store the authenticated principal in the
// context. Used together with GetPrincipalFromContext for type-safe retrieval.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.PrincipalCtxKey, principal)
var PrincipalCtxKey = contextKey("principal")

// ClientIDCtxKey is the key used to store the originating client identifier
// (the value of the X-Client-Id request header) in the context. Mutation
// handlers attach it to published change events so the originating client can
// suppress its own echo.
var ClientIDCtxKey = contextKey("clientID")

// GetPrincipalFromContext retrieves the authenticated principal from the
// context.
//
// Returns the principal and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetPrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(models.Principal)
	return principal, ok
}

// GetClientIDFromContext retrieves the originating client identifier from the
// context. Returns the empty string when no client identifier was attached.
func GetClientIDFromContext(ctx context.Context) string {
	clientID, _ := ctx.Value(ClientIDCtxKey).(string)
	return clientID
}
