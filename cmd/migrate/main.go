// Command migrate applies the embedded database migrations.
//
//	migrate [up|down|status]
package main

import (
	"os"

	"github.com/tanguyors/bali-pass-home/internal/config"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
	"github.com/tanguyors/bali-pass-home/internal/storage/postgres"
)

func main() {
	logger := helpers.NewLogger("migrate")
	cfg := config.LoadConfig()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	logger.Info().Str("direction", direction).Msg("Running migrations")
	if err := postgres.Migrate(cfg.DatabaseURL, direction); err != nil {
		logger.Fatal().Err(err).Msg("Migrations failed")
	}
	logger.Info().Str("direction", direction).Msg("Migrations done")
}
