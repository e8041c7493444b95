package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-dav-sync/internal/service"
	"github.com/MKhiriev/go-dav-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrAuthenticationFailed:    http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrTokenCreationFailed:     http.StatusInternalServerError,
	service.ErrInvalidSyncToken:        http.StatusBadRequest,
	service.ErrInvalidPath:             http.StatusBadRequest,

	store.ErrEntryNotFound:      http.StatusNotFound,
	store.ErrEntryAlreadyExists: http.StatusConflict,
	store.ErrNoCredentialFound:  http.StatusUnauthorized,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
