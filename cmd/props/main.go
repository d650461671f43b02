package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vodeneev/nbaprops/internal/parser/parsers"
	_ "github.com/Vodeneev/nbaprops/internal/parser/parsers/all"
	pkgconfig "github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/health"
	"github.com/Vodeneev/nbaprops/internal/pkg/health/handlers"
	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
	"github.com/Vodeneev/nbaprops/internal/pkg/logging"
	"github.com/Vodeneev/nbaprops/internal/pkg/notify"
	"github.com/Vodeneev/nbaprops/internal/pkg/parserutil"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
	"github.com/Vodeneev/nbaprops/internal/pkg/storage"
)

const (
	defaultConfigPath = "configs/local.yaml"
	serviceName       = "props"
)

type config struct {
	configPath string
	schedule   string
	runFor     time.Duration
	runNow     bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("Props ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := logging.SetupLogger(appConfig.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closer.Close()
	logger.Info("Config loaded", "path", cfg.configPath)

	store, err := storage.NewPropsStorage(appConfig.PropsDB, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	parser, err := parsers.New(appConfig.Parser.Source, appConfig, store, logger)
	if err != nil {
		return err
	}

	lock, closeLock, err := storage.NewRunLock(appConfig.Redis)
	if err != nil {
		return fmt.Errorf("run lock: %w", err)
	}
	defer closeLock()

	notifier, err := notify.NewFromConfig(appConfig.Telegram, logger)
	if err != nil {
		logger.Warn("Telegram notifications disabled", "error", err)
		notifier = nil
	}

	tracker := performance.NewTracker()
	opts := parserutil.RunOptions{
		Lock:     lock,
		Notifier: notifier,
		Tracker:  tracker,
		// a run must not outlive its lock
		Timeout:  appConfig.Redis.LockTTL,
		Logger:   logger,
	}

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel, logger)

	schedule := cfg.schedule
	if schedule == "" {
		schedule = appConfig.Schedule
	}
	if schedule == "" {
		_, err := parserutil.RunOnce(ctx, parser, opts)
		if errors.Is(err, storage.ErrLockHeld) {
			return nil
		}
		return err
	}
	return runScheduled(ctx, schedule, cfg.runNow, parser, opts, appConfig, tracker, logger)
}

func runScheduled(ctx context.Context, schedule string, runNow bool, parser interfaces.Parser, opts parserutil.RunOptions,
	appConfig *pkgconfig.Config, tracker *performance.Tracker, logger *slog.Logger) error {
	scheduler, err := parserutil.NewScheduler(ctx, schedule, parser, opts)
	if err != nil {
		return err
	}

	if port := appConfig.Health.Port; port > 0 {
		addr, err := health.AddrFor(port)
		if err != nil {
			return err
		}
		h := handlers.New(serviceName, tracker, scheduler.Trigger)
		if err := health.Run(ctx, addr, h, appConfig.Health.ReadHeaderTimeout, logger); err != nil {
			return err
		}
	}

	logger.Info("Starting scheduled ingestion", "schedule", schedule)
	if runNow {
		scheduler.Trigger()
	}
	scheduler.Run(ctx)
	logger.Info("Props ingestion stopped gracefully")
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.schedule, "schedule", "", `Run as a daemon on this cron schedule (e.g. "@every 30m", "*/15 17-23 * * *"). Empty = config schedule, or a single run`)
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until done or SIGINT/SIGTERM")
	flag.BoolVar(&cfg.runNow, "run-now", true, "In scheduled mode, start a run immediately instead of waiting for the first tick")
	flag.Parse()
	return cfg
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal, stopping...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
}
