package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/handler"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/internal/notify"
	"github.com/MKhiriev/go-dav-sync/internal/server"
	"github.com/MKhiriev/go-dav-sync/internal/service"
	"github.com/MKhiriev/go-dav-sync/internal/store"
	"github.com/MKhiriev/go-dav-sync/internal/workers"
	"github.com/MKhiriev/go-dav-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("go-dav-sync-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	services := service.NewServices(storages, cfg, buildInfo, log)

	publisher := notify.NewPublisher(cfg.Notify.WriteTimeout, log)

	handlers, err := handler.NewHandlers(services, publisher, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	backgroundWorkers := workers.NewWorkers(storages, cfg.Sync, log)

	srv, err := server.NewServer(handlers, publisher, backgroundWorkers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
