package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/detector"
	"github.com/aleister1102/leakwatch/internal/logger"
	"github.com/aleister1102/leakwatch/internal/scheduler"

	"github.com/rs/zerolog"
)

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	if flags.Mode != "" {
		gCfg.Mode = flags.Mode
		zLogger.Info().Str("mode", gCfg.Mode).Msg("Mode overridden by command line flag.")
	}

	if err := config.ValidateConfig(gCfg, detector.KnownFamilies()...); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	if gCfg.Mode == config.ModeScan && !flags.HasTargets() {
		zLogger.Fatal().Msg("scan mode needs -url, -file or -input")
	}

	app, err := newApplication(gCfg, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := app.Close(); err != nil {
			zLogger.Error().Err(err).Msg("Failed to close finding store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, app, gCfg, flags, zLogger); err != nil {
		zLogger.Error().Err(err).Str("mode", gCfg.Mode).Msg("Run failed")
		_ = app.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, app *application, cfg *config.GlobalConfig, flags AppFlags, zLogger zerolog.Logger) error {
	switch cfg.Mode {
	case config.ModeScan:
		_, err := app.runScan(ctx, flags)
		return err
	case config.ModeRevalidate:
		_, err := app.runRevalidate(ctx)
		return err
	case config.ModeList:
		return app.runList(ctx, os.Stdout)
	case config.ModeAutomated:
		s, err := scheduler.NewScheduler(cfg.SchedulerConfig, func(ctx context.Context, cycle int) error {
			return app.runCycle(ctx, cycle, flags)
		}, zLogger)
		if err != nil {
			return err
		}
		return s.Start(ctx)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}
