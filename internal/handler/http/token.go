package http

import (
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
)

// tokenResponse is the body of a successful POST /api/token request.
type tokenResponse struct {
	Token string `json:"Token"`
}

// issueToken serves POST /api/token: exchanges an already authenticated
// request (Digest or Bearer) for a fresh JWT so subsequent requests skip the
// Digest handshake.
func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	principal, found := utils.GetPrincipalFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.issueToken").Msg("no authenticated principal in context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, principal.Name)
	if err != nil {
		log.Err(err).Str("func", "*Handler.issueToken").Msg("error creating token")
		http.Error(w, "error creating token", statusFromError(err))
		return
	}

	utils.WriteJSON(w, tokenResponse{Token: token.SignedString}, http.StatusOK)
}
