package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vodeneev/nbaprops/internal/gamelogs"
	pkgconfig "github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/logging"
	"github.com/Vodeneev/nbaprops/internal/pkg/storage"
)

const defaultConfigPath = "configs/local.yaml"

type config struct {
	configPath string
	season     string
	seasonType string
	browser    bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("Game log load failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closer, err := logging.SetupLogger(appConfig.Logging, "gamelogs")
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nba := appConfig.Parser.NBAStats
	season := firstNonEmpty(cfg.season, nba.Season, gamelogs.CurrentSeason(time.Now()))
	seasonType := firstNonEmpty(cfg.seasonType, nba.SeasonType)

	var fetcher gamelogs.Fetcher
	if cfg.browser || nba.UseBrowser {
		fetcher = gamelogs.NewBrowserFetcher(2*appConfig.Parser.Timeout, logger)
	} else {
		fetcher = gamelogs.NewHTTPFetcher(2*appConfig.Parser.Timeout, appConfig.Parser.UserAgent)
	}

	store, err := storage.NewPlayerStorage(ctx, appConfig.PlayersDB, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	loader := gamelogs.NewLoader(gamelogs.NewClient(nba.BaseURL, fetcher), store, logger)
	if _, err := loader.Load(ctx, season, seasonType); err != nil {
		return err
	}
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.season, "season", "", `Season to load, e.g. "2024-25". Empty = config, then the current season`)
	flag.StringVar(&cfg.seasonType, "season-type", "", `"Regular Season", "Playoffs", ... Empty = config`)
	flag.BoolVar(&cfg.browser, "browser", false, "Fetch through headless Chrome")
	flag.Parse()
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
