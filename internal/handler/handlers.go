package handler

import (
	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/handler/http"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
	"github.com/MKhiriev/go-dav-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, publisher *notify.Publisher, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, publisher, cfg.Sync, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
