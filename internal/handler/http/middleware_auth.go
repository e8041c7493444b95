// Package http implements the HTTP transport layer of the application.
// It provides middleware, route handlers, and request/response utilities
// for the REST API and the notification streams. Authentication, logging,
// tracing, and compression concerns are all handled at this layer before
// requests are forwarded to the service layer.
package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/utils"
	"github.com/MKhiriev/go-dav-sync/models"
)

// auth is an HTTP middleware that enforces authentication on every API
// route. Two schemes are accepted:
//
//   - Digest (RFC 2617): validated via
//     [service.AuthService.Authenticate]. A missing or failed handshake is
//     answered with HTTP 401 and a "WWW-Authenticate: Digest ..." challenge
//     carrying a fresh nonce. When the credentials were correct but the
//     nonce had expired, the challenge carries stale=true so well-behaved
//     clients retry without re-prompting the user.
//
//   - Bearer: a JWT previously issued by POST /api/token, validated via
//     [service.AuthService.ParseToken].
//
// On success the authenticated principal is stored in the request context
// under [utils.PrincipalCtxKey] before delegating to the next handler.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Debug().Msg("request without credentials, challenging")
			h.writeChallenge(w, false)
			return
		}

		var principal models.Principal

		if h.services.AuthService.IsDigestAuthorization(authHeader) {
			authenticated, stale, err := h.services.AuthService.Authenticate(ctx, authHeader, r.Method)
			if err != nil {
				log.Err(err).Msg("digest authentication failed")
				h.writeChallenge(w, stale)
				return
			}
			principal = authenticated
		} else {
			tokenString, err := getTokenFromAuthHeader(authHeader)
			if err != nil {
				log.Err(err).Send()
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			token, err := h.services.AuthService.ParseToken(ctx, tokenString)
			if err != nil {
				log.Err(err).Msg("error occurred during parsing token")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			principal = models.Principal{Name: token.Username}
		}

		// Store the principal in the context so that downstream handlers can
		// retrieve it without re-running the handshake.
		ctx = context.WithValue(ctx, utils.PrincipalCtxKey, principal)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeChallenge answers 401 with a Digest challenge header.
func (h *Handler) writeChallenge(w http.ResponseWriter, stale bool) {
	w.Header().Set("WWW-Authenticate", h.services.AuthService.Challenge(stale))
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value of the form "<scheme> <token>".
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] — if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] — if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
