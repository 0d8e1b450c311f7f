package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/api"
	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/logging"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/notify"
	"github.com/edyou/engine-dashboard/internal/storage"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/analytics-api.yml", "Configuration file path")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log)

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT secret not set, analytics API is unauthenticated")
	}

	// Connect to database
	store, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	log.Info().Msg("Connected to database")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := meter.New(reg)

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiServer := api.NewRESTServer(cfg, store, m, reg)

	// WaitGroup for services
	var wg sync.WaitGroup

	// Start API server
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.ListenAndServe(cfg.APIAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("REST API server failed")
		}
	}()

	// Optional: Start NATS subscriber
	if cfg.NATS.URL != "" {
		log.Info().Str("url", cfg.NATS.URL).Msg("Connecting to NATS...")

		nc, err := notify.Connect(cfg.NATS)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, continuing without run notifications")
		} else {
			defer nc.Close()
			log.Info().Msg("Connected to NATS")

			subscriber := notify.NewSubscriber(nc, cfg.NATS.Subject, m)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("NATS subscriber stopped")
				}
			}()
		}
	} else {
		log.Info().Msg("NATS not configured, running without run notifications")
	}

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	// Cancel context
	cancel()

	// Shutdown API server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown API server gracefully")
	}

	// Wait for all services
	wg.Wait()

	log.Info().Msg("Analytics API stopped")
}
