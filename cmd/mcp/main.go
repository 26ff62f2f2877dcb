package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/config"
	"github.com/urmzd/lightd/pkg/db"
	lightdmcp "github.com/urmzd/lightd/pkg/mcp"
	"github.com/urmzd/lightd/pkg/system"
)

func main() {
	// Logging must go to stderr; stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	args, err := config.ParseCommandLineArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}
	cfg, err := config.LoadConfig(args.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.ApplyCommandLineArgs(args)
	if !cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	// Run migrations
	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Bootstrap if needed (first run)
	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		seeds, err := system.Seeds(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build seed documents")
		}
		if err := database.Bootstrap(ctx, seeds); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	sys := system.New(cfg, database, system.Options{})
	if err := sys.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load effects and settings")
	}

	// The controller keeps running alongside the stdio session
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sys.Run(ctx); err != nil {
			log.Error().Err(err).Msg("System stopped")
		}
	}()

	mcpServer := lightdmcp.NewServer(sys.Effects, sys.Device, sys)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
	stop()
	<-done
}
