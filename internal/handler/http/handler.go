package http

import (
	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
	"github.com/MKhiriev/go-dav-sync/internal/service"
)

type Handler struct {
	services  *service.Services
	publisher *notify.Publisher

	// defaultLimit is the page size applied to sync requests that carry no
	// explicit limit parameter. Zero means unpaginated.
	defaultLimit int

	upgrader websocket.Upgrader

	logger *logger.Logger
}

func NewHandler(services *service.Services, publisher *notify.Publisher, cfg config.Sync, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:     services,
		publisher:    publisher,
		defaultLimit: cfg.DefaultLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}
