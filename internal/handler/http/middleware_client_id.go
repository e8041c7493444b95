package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/utils"
)

const clientIDHeader = "X-Client-Id"

// withClientID copies the optional X-Client-Id request header into the
// request context. Mutation handlers attach it to published change events so
// the originating client can recognize (and skip) the echo of its own
// mutation.
func (h *Handler) withClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if clientID := r.Header.Get(clientIDHeader); clientID != "" {
			ctx := context.WithValue(r.Context(), utils.ClientIDCtxKey, clientID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
