package service

import "errors"

var (
	// ErrAuthenticationFailed covers every Digest failure mode: malformed
	// header, unknown user, wrong digest, stale nonce. The reasons are not
	// distinguished to the client to prevent user enumeration.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidPath is returned by entry mutations for empty paths, paths
	// with empty or relative segments, and moves into the moved subtree.
	ErrInvalidPath = errors.New("invalid entry path")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrInvalidSyncToken is returned for a non-empty sync token that does
	// not parse as a decimal integer. An empty token is not an error: it
	// requests full synchronization.
	ErrInvalidSyncToken = errors.New("invalid sync token")
)
