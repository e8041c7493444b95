package http

import (
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
)

// getChanges serves GET /api/sync.
//
// Query parameters:
//   - path:  subtree to synchronize, "" for the root
//   - token: sync token from a previous response; absent or empty requests
//     full synchronization
//   - deep:  "true" to descend recursively, immediate children otherwise
//   - limit: page size; 0 probes for the current sync token without items;
//     absent falls back to the configured default page size
func (h *Handler) getChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	query := r.URL.Query()

	path := query.Get("path")
	syncToken := query.Get("token")
	deep := query.Get("deep") == "true"

	limit := -1
	if h.defaultLimit > 0 {
		limit = h.defaultLimit
	}
	if rawLimit := query.Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 0 {
			log.Warn().Str("limit", rawLimit).Msg("invalid limit parameter")
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	batch, err := h.services.SyncService.GetChanges(ctx, path, syncToken, deep, limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getChanges").Msg("error querying changes")
		http.Error(w, "error querying changes", statusFromError(err))
		return
	}

	utils.WriteJSON(w, batch, http.StatusOK)
}
