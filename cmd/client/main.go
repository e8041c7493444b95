package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-dav-sync/internal/adapter"
	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// The client is a headless sync watcher: it authenticates via the Digest
// handshake, pulls the full server state once, then follows the WebSocket
// notification stream and pulls incremental changes after every event.
func main() {
	printBuildInfo()

	log := logger.NewLogger("go-dav-sync-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.Credentials, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create server adapter")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := serverAdapter.Handshake(ctx); err != nil {
		log.Fatal().Err(err).Msg("digest handshake failed")
	}

	version, err := serverAdapter.GetVersion(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("get server version")
	}
	log.Info().Str("server_version", version).Msg("connected")

	syncToken, err := fullSync(ctx, serverAdapter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initial sync failed")
	}

	watch(ctx, serverAdapter, syncToken, log)

	log.Info().Msg("client stopped")
}

// fullSync enumerates the whole tree page by page and returns the sync token
// to start incremental queries from.
func fullSync(ctx context.Context, serverAdapter adapter.ServerAdapter, log *logger.Logger) (string, error) {
	var (
		token string
		total int
	)

	for {
		batch, err := serverAdapter.GetChanges(ctx, "", token, true, fullSyncPageSize)
		if err != nil {
			return "", err
		}

		total += batch.Length
		token = batch.NewSyncToken

		if !batch.MoreResults {
			break
		}
	}

	log.Info().Int("entries", total).Str("sync_token", token).Msg("initial sync complete")
	return token, nil
}

const fullSyncPageSize = 500

// watch follows the notification stream and pulls incremental changes after
// every event. Dropped connections are redialed with a fixed backoff until
// ctx is cancelled.
func watch(ctx context.Context, serverAdapter adapter.ServerAdapter, syncToken string, log *logger.Logger) {
	token := syncToken

	onEvent := func(event models.ChangeEvent) {
		log.Info().
			Str("event_type", string(event.EventType)).
			Str("folder_path", event.FolderPath).
			Str("source_path", event.SourcePath).
			Msg("change notification")

		for {
			batch, err := serverAdapter.GetChanges(ctx, "", token, true, fullSyncPageSize)
			if err != nil {
				log.Err(err).Msg("incremental sync failed")
				return
			}

			for _, item := range batch.Items {
				log.Info().
					Str("path", item.Path).
					Bool("deleted", item.Deleted).
					Int64("sync_id", item.SyncID).
					Msg("changed entry")
			}

			token = batch.NewSyncToken
			if !batch.MoreResults {
				return
			}
		}
	}

	for {
		err := serverAdapter.Listen(ctx, onEvent)
		if ctx.Err() != nil {
			return
		}
		log.Err(err).Msg("notification stream dropped, redialing")

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
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
