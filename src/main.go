package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/polaMikhail/directory-sync/src/features/config"
	"github.com/polaMikhail/directory-sync/src/features/history"
	"github.com/polaMikhail/directory-sync/src/features/hosting"
	"github.com/polaMikhail/directory-sync/src/features/jobs"
	"github.com/polaMikhail/directory-sync/src/features/logging"
	"github.com/polaMikhail/directory-sync/src/features/metrics"
	"github.com/polaMikhail/directory-sync/src/features/scanning"
	"github.com/polaMikhail/directory-sync/src/features/scheduling"
	"github.com/polaMikhail/directory-sync/src/features/syncing"
	"github.com/polaMikhail/directory-sync/src/infra/database"
	"github.com/polaMikhail/directory-sync/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// The source tree must exist before anything runs; the destination
	// is created if missing.
	if err := cfgManager.CheckPaths(); err != nil {
		log.Fatalf("path check failed: %v", err)
	}

	spec, err := scheduling.ParseSpec(cfgManager.Get().Schedule)
	if err != nil {
		log.Fatalf("invalid schedule %q: %v", cfgManager.Get().Schedule, err)
	}

	// Create the run history store
	var historyService *history.Service
	if cfgManager.Get().History.Enabled {
		store, err := database.NewSqliteStore(cfgManager.Get().Database.Path)
		if err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
		defer store.Close()
		historyService = history.NewService(store, cfgManager)
	} else {
		historyService = history.NewService(nil, cfgManager)
	}

	// Create the job service
	jobService := jobs.NewService(&cfgManager.Get().Jobs)

	// Metrics
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	// Create the syncing service
	fs := afero.NewOsFs()
	scanner := scanning.NewScanner(fs)
	applier := syncing.NewApplier(fs)
	syncService := syncing.NewService(cfgManager, scanner, applier, jobService, historyService, recorder)

	// Register the sync task so manual and watcher triggers run as jobs
	jobService.RegisterTask("mirror_sync", syncing.NewSyncTask(syncService))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the cron scheduler
	scheduler := scheduling.NewScheduler(spec, clockwork.NewRealClock(), func(tickCtx context.Context) error {
		_, err := syncService.Sync(tickCtx, syncing.TriggerSchedule)
		return err
	})
	go scheduler.Run(ctx)

	// Start the source watcher if enabled
	var sourceWatcher *watcher.Watcher
	if cfgManager.Get().Watch.Enabled {
		changeEvents := make(chan watcher.ChangeEvent, 1)
		sourceWatcher, err = watcher.NewWatcher(changeEvents, time.Duration(cfgManager.Get().Watch.DebounceSecs)*time.Second)
		if err != nil {
			log.Fatalf("failed to create source watcher: %v", err)
		}
		if err := sourceWatcher.Start(ctx, cfgManager.Get().SourcePath); err != nil {
			log.Fatalf("failed to start source watcher: %v", err)
		}
		go func() {
			for range changeEvents {
				if _, err := syncService.StartSyncJob(syncing.TriggerWatcher); err != nil {
					slog.Warn("Watcher sync not started", "error", err)
				}
			}
		}()
	}

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		var err error
		telegramBot, err = hosting.NewTelegramBot(cfgManager, syncService, jobService, historyService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server if enabled
	var server *hosting.Server
	if cfgManager.Get().Server.Enabled {
		server = hosting.NewServer(cfgManager, syncService, jobService, historyService, scheduler, registry)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("server stopped", "error", err)
			}
		}()
		slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)
	}

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down...")

	// Stop scheduling new ticks; an in-flight tick finishes on its own.
	cancel()

	if sourceWatcher != nil {
		sourceWatcher.Stop()
	}

	// Shutdown the Telegram bot
	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	// Shutdown the server
	if server != nil {
		if err := server.Shutdown(); err != nil {
			log.Fatalf("failed to shutdown server: %v", err)
		}
	}
	slog.Info("Gracefully shut down.")
}
