package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/egarcia91/BondiolaFC/internal/config"
	"github.com/egarcia91/BondiolaFC/internal/docstore"
	"github.com/egarcia91/BondiolaFC/internal/effects"
	server "github.com/egarcia91/BondiolaFC/internal/http"
	"github.com/egarcia91/BondiolaFC/internal/league"
	"github.com/egarcia91/BondiolaFC/internal/metrics"
	"github.com/egarcia91/BondiolaFC/internal/notifier"
	"github.com/egarcia91/BondiolaFC/internal/notifier/slack"
	"github.com/egarcia91/BondiolaFC/internal/pubsub"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	store, storeTeardown, err := docstore.Open(context.Background(), cfg.Store)
	storeInitDuration := time.Since(startTime)
	log.Info("Document store initialization time recorded", "backend", cfg.Store.Backend, "duration_ms", storeInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to open document store: %s", err)
	}
	defer func() {
		log.Info("Closing document store")
		storeTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var n notifier.Notifier = notifier.Nop{}
	if cfg.Slack.Enabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Warn("Slack is not configured, notifications are disabled")
	}

	ps, err := pubsub.New(context.Background(), cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer ps.Close()

	applier := effects.New(store, metricsSvc)
	svc := league.New(store, applier, n, ps)
	s := server.NewServer(svc, metricsSvc, metricsHandler, ps)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
