package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/auth"
	"github.com/edyou/engine-dashboard/internal/client"
	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/logging"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/web"
)

func main() {
	// Command line flags
	var configFile string
	flag.StringVar(&configFile, "config", "config/dashboard.yml", "Configuration file path")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadOrDefault(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log)
	cfg.PrintConfigSummary()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := meter.New(reg)

	// Backend client
	opts := []client.Option{client.WithMeter(m)}
	if signer := auth.ServiceTokens(cfg); signer != nil {
		opts = append(opts, client.WithTokenSource(signer))
	}
	backend := client.New(cfg.Backend, opts...)

	srv, err := web.NewServer(cfg, backend, m, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dashboard server")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.DashboardAddr())
	}()

	// Wait for signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Dashboard server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown dashboard gracefully")
	}

	log.Info().Msg("Dashboard stopped")
}
