// migrate applies the embedded engine schema.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/db/migrate"
	"github.com/edyou/engine-dashboard/internal/logging"
)

func main() {
	configFile := flag.String("config", "config/analytics-api.yml", "Configuration file path")
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log)

	d, err := migrate.ParseDirection(*direction)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(2)
	}

	if err := migrate.Run(cfg.Database.DSN, d); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
