package notify

import "errors"

var (
	// ErrPublisherClosed is returned by Subscribe after the publisher has
	// been shut down.
	ErrPublisherClosed = errors.New("notification publisher is closed")

	// ErrSinkClosed is returned by a sink's Write after the sink has been
	// closed; the publisher evicts the subscriber on it.
	ErrSinkClosed = errors.New("notification sink is closed")
)
