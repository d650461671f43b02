package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vodeneev/nbaprops/internal/names"
	pkgconfig "github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/logging"
	"github.com/Vodeneev/nbaprops/internal/pkg/storage"
)

const defaultConfigPath = "configs/local.yaml"

type config struct {
	configPath string
	dryRun     bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("Name reconciliation failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closer, err := logging.SetupLogger(appConfig.Logging, "names")
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	props, err := storage.NewPropsStorage(appConfig.PropsDB, logger)
	if err != nil {
		return err
	}
	defer props.Close()

	players, err := storage.NewPlayerStorage(ctx, appConfig.PlayersDB, logger)
	if err != nil {
		return err
	}
	defer players.Close()

	if cfg.dryRun {
		res, err := names.NewReconciler(props, players, nil, logger).Find(ctx)
		if err != nil {
			return err
		}
		logger.Info("Total unmatched names", "count", len(res.Unmatched))
		return nil
	}

	decider, err := names.NewPromptDecider()
	if err != nil {
		return err
	}
	defer decider.Close()

	res, err := names.NewReconciler(props, players, decider, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Total unmatched names", "count", len(res.Unmatched), "accepted", res.Accepted, "rejected", res.Rejected, "stopped", res.Stopped)
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Only list unmatched names, do not prompt")
	flag.Parse()
	return cfg
}
