package http

import (
	"net/http"
)

// getServerVersion reports the server build version as plain text. The
// endpoint is public: clients probe it before the Digest handshake.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(h.services.AppInfoService.GetAppVersion(r.Context())))
}
