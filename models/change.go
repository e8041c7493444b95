package models

// EventType classifies a change event published to connected clients.
type EventType string

// Event types produced by the storage layer. "refresh" is the coarse hint
// ("something under this folder changed, re-list it"); the rest carry the
// precise operation.
const (
	EventRefresh  EventType = "refresh"
	EventCreated  EventType = "created"
	EventUpdated  EventType = "updated"
	EventDeleted  EventType = "deleted"
	EventMoved    EventType = "moved"
	EventLocked   EventType = "locked"
	EventUnlocked EventType = "unlocked"
)

// ChangeEvent is a single notification fanned out to all connected
// subscribers after a storage mutation. It is constructed at the moment of
// the mutation, delivered best-effort at most once, and never persisted.
//
// The JSON field names (FolderPath / EventType) are the wire format consumed
// by browser clients; SourcePath is only populated for moves.
type ChangeEvent struct {
	// EventType identifies what happened.
	EventType EventType `json:"EventType"`

	// FolderPath is the affected path (the destination path for moves).
	FolderPath string `json:"FolderPath"`

	// SourcePath is the original path of a moved item; empty otherwise.
	SourcePath string `json:"SourcePath,omitempty"`

	// OriginatingClientID optionally identifies the client whose request
	// caused the mutation, so that client can suppress its own echo.
	OriginatingClientID string `json:"OriginatingClientId,omitempty"`
}
