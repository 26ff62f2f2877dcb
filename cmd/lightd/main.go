package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/lightd/pkg/api"
	"github.com/urmzd/lightd/pkg/config"
	"github.com/urmzd/lightd/pkg/db"
	"github.com/urmzd/lightd/pkg/system"
	"golang.org/x/sync/errgroup"

	_ "github.com/urmzd/lightd/docs"
)

// @title           lightd API
// @version         1.0
// @description     REST API for controlling an addressable LED controller

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	args, err := config.ParseCommandLineArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}

	// Load configuration
	cfg, err := config.LoadConfig(args.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.ApplyCommandLineArgs(args)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
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

	if err := prepareDatabase(ctx, database, cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database")
	}

	sys := system.New(cfg, database, system.Options{})
	if err := sys.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load effects and settings")
	}

	log.Info().
		Int("channels", cfg.Channels.Count).
		Int("leds_per_strip", cfg.Channels.LEDsPerStrip).
		Int("effects", sys.Effects.EffectCount()).
		Str("api_address", cfg.APIAddress()).
		Msg("Configuration loaded")

	router := api.NewRouter(api.Services{
		Effects: sys.Effects,
		Device:  sys.Device,
		System:  sys,
		Viewer:  sys.Viewer,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sys.Run(ctx) })
	g.Go(func() error { return router.Serve(ctx, cfg.APIAddress()) })

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Shut down with error")
		return
	}
	log.Info().Msg("Shut down")
}

// prepareDatabase runs migrations and seeds a fresh database.
func prepareDatabase(ctx context.Context, database *db.DB, cfg *config.Config) error {
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		return err
	}
	if !needsBootstrap {
		return nil
	}

	log.Info().Msg("First run detected, bootstrapping database...")
	seeds, err := system.Seeds(cfg)
	if err != nil {
		return err
	}
	if err := database.Bootstrap(ctx, seeds); err != nil {
		return err
	}
	log.Info().Msg("Database bootstrapped successfully")
	return nil
}
