package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"maplebudget/internal/api"
	"maplebudget/internal/backend"
	"maplebudget/internal/cache"
	"maplebudget/internal/cli"
	"maplebudget/internal/export/sheets"
	apphttp "maplebudget/internal/http"
	"maplebudget/internal/log"
	"maplebudget/internal/session"
	"maplebudget/internal/worker"
)

func main() {
	cfg, logger := cli.LoadConfig(log.ComponentApp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := backend.NewFactory(logger).Create(ctx, cli.BackendConfig(logger, cfg))
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	client := api.New(api.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Logger:     logger,
	})

	sessions := session.NewManager(res.Store, session.Config{
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	}, logger)

	var snapshots cache.Cache[*api.Snapshot] = cache.Noop[*api.Snapshot]{}
	if cfg.CacheBackend != "none" && cfg.CacheTTL > 0 {
		c, closeCache, err := cache.New[*api.Snapshot](cache.Config{
			Backend: cfg.CacheBackend,
			Size:    cfg.CacheSize,
			TTL:     cfg.CacheTTL,
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize snapshot cache", err)
		}
		defer closeCache()

		cacheManager := cache.NewManager(logger)
		cacheManager.Register(c)
		cacheManager.StartCleanup(time.Minute)
		defer cacheManager.Stop()

		snapshots = c
		logger.Info("Snapshot cache enabled", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL, "size", cfg.CacheSize)
	}

	var exporter apphttp.SheetsExporter
	if cfg.SheetsEnabled() {
		e, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			Tab:             cfg.SheetsExportTab,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets export", err)
		}
		exporter = e
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "tab", cfg.SheetsExportTab)
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Location:           cfg.Location(),
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		API:       client,
		Sessions:  sessions,
		Store:     res.Store,
		Events:    res.Events,
		Snapshots: snapshots,
		Sheets:    exporter,
		Logger:    logger,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Without a broker no worker runs, so the web process purges sessions.
	if !res.Publishing {
		purger := worker.NewSessionPurger(res.Store, cfg.SessionPurgeInterval, logger)
		go func() {
			if err := purger.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Session purger stopped", log.FieldError, err)
			}
		}()
	}

	done := cli.ShutdownOnSignal(ctx, logger, 30*time.Second, srv.Shutdown)

	logger.Info("Starting maplebudget server",
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
		"backend", cfg.DataBackend,
		"amqp_enabled", res.Publishing)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	<-done
	cancel()
	logger.Info("Server stopped gracefully")
}
