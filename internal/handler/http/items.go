package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

// itemRequest is the body of the entry mutation endpoints.
type itemRequest struct {
	Path     string `json:"Path"`
	IsFolder bool   `json:"IsFolder,omitempty"`
	Size     int64  `json:"Size,omitempty"`
}

// moveRequest is the body of POST /api/items/move.
type moveRequest struct {
	SourcePath      string `json:"SourcePath"`
	DestinationPath string `json:"DestinationPath"`
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	entry, err := h.services.EntryService.GetEntry(ctx, r.URL.Query().Get("path"))
	if err != nil {
		log.Err(err).Str("func", "*Handler.getItem").Msg("error resolving entry")
		http.Error(w, "error resolving entry", statusFromError(err))
		return
	}

	utils.WriteJSON(w, entry, http.StatusOK)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request itemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.createItem").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	created, err := h.services.EntryService.CreateEntry(ctx, request.Path, request.IsFolder, request.Size)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createItem").Msg("error creating entry")
		http.Error(w, "error creating entry", statusFromError(err))
		return
	}

	h.publishChange(ctx, models.EventCreated, created, "")

	utils.WriteJSON(w, created, http.StatusCreated)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request itemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.updateItem").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	updated, err := h.services.EntryService.UpdateEntry(ctx, request.Path, request.Size)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateItem").Msg("error updating entry")
		http.Error(w, "error updating entry", statusFromError(err))
		return
	}

	h.publishChange(ctx, models.EventUpdated, updated, "")

	utils.WriteJSON(w, updated, http.StatusOK)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request itemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.deleteItem").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	deleted, err := h.services.EntryService.DeleteEntry(ctx, request.Path)
	if err != nil {
		log.Err(err).Str("func", "*Handler.deleteItem").Msg("error deleting entry")
		http.Error(w, "error deleting entry", statusFromError(err))
		return
	}

	h.publishChange(ctx, models.EventDeleted, deleted, "")

	utils.WriteJSON(w, deleted, http.StatusOK)
}

func (h *Handler) moveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var request moveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.moveItem").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	moved, err := h.services.EntryService.MoveEntry(ctx, request.SourcePath, request.DestinationPath)
	if err != nil {
		log.Err(err).Str("func", "*Handler.moveItem").Msg("error moving entry")
		http.Error(w, "error moving entry", statusFromError(err))
		return
	}

	h.publishChange(ctx, models.EventMoved, moved, request.SourcePath)

	utils.WriteJSON(w, moved, http.StatusOK)
}

// publishChange fans a mutation out to the notification subscribers.
// FolderPath is the folder clients should refresh, so it carries the parent
// of the affected entry. The originating client id, when supplied via the
// X-Client-Id header, lets that client skip the echo of its own mutation.
func (h *Handler) publishChange(ctx context.Context, eventType models.EventType, entry models.Entry, sourcePath string) {
	h.publisher.Publish(ctx, models.ChangeEvent{
		EventType:           eventType,
		FolderPath:          entry.ParentPath,
		SourcePath:          sourcePath,
		OriginatingClientID: utils.GetClientIDFromContext(ctx),
	})
}
