// Command edyouctl reads the analytics API from the terminal.
//
//	edyouctl tenants
//	edyouctl users "Acme Co" --q ada --limit 20
//	edyouctl overview ada@example.com
//	edyouctl metrics --days 30 --tenant "Acme Co"
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

var version = "dev"

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
