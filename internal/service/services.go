package service

import (
	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/models"
)

type Services struct {
	AuthService    AuthService
	SyncService    SyncService
	EntryService   EntryService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) *Services {
	return &Services{
		AuthService:    NewAuthService(storages.CredentialRepository, cfg.Auth, logger),
		SyncService:    NewSyncService(storages.EntryRepository, cfg.Sync, logger),
		EntryService:   NewEntryService(storages.EntryRepository, logger),
		AppInfoService: NewAppInfoService(buildInfo, logger),
	}
}
