package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vainnor/vatsim-scraper/api"
	"github.com/vainnor/vatsim-scraper/archive"
	"github.com/vainnor/vatsim-scraper/collector"
	"github.com/vainnor/vatsim-scraper/config"
	"github.com/vainnor/vatsim-scraper/db"
	"github.com/vainnor/vatsim-scraper/logging"
	"github.com/vainnor/vatsim-scraper/notify"
	jsonfetcher "github.com/vainnor/vatsim-scraper/services/json_fetcher"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	daily, err := logging.NewDailyWriter(cfg.LogDirectory, time.Now)
	if err != nil {
		log.Fatalf("Failed to open log directory: %v", err)
	}
	defer daily.Close()
	logger := logging.New(os.Stdout, daily)
	log.SetOutput(logger.Writer())

	store, err := archive.New(cfg.SaveDirectory)
	if err != nil {
		log.Fatalf("Failed to initialize archive: %v", err)
	}

	var notifier collector.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewDiscord(cfg.WebhookURL)
	}

	collectorCfg := collector.Config{Interval: cfg.UpdateInterval}
	var queries api.Mirror
	if cfg.DBDriver != "" {
		mirror, err := db.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer mirror.Close()
		collectorCfg.Mirror = mirror
		queries = mirror
	}

	c := collector.NewCollector(collectorCfg, jsonfetcher.New(cfg.FeedURL), store, notifier, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *http.Server
	if cfg.APIAddr != "" {
		server = &http.Server{
			Addr:              cfg.APIAddr,
			Handler:           api.NewRouter(c, store, queries, cfg.APIKey),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Printf("Starting API server on %s", cfg.APIAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("API server stopped: %v", err)
			}
		}()
	}

	if err := c.Run(ctx); err != nil {
		logger.Printf("Shutdown flush incomplete: %v", err)
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("API server shutdown: %v", err)
		}
	}
}
