package gamelogs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

// PlayerStore is where the loader writes players and game logs.
type PlayerStore interface {
	UpsertPlayers(ctx context.Context, players []models.Player) (int, error)
	UpsertGameLogs(ctx context.Context, logs []models.GameLog) (int, error)
}

// LoadResult summarizes one load.
type LoadResult struct {
	Season   string
	Players  int
	GameLogs int
	Skipped  int
}

// Loader refreshes the canonical player store from the league game log.
type Loader struct {
	client *Client
	store  PlayerStore
	logger *slog.Logger
}

func NewLoader(client *Client, store PlayerStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{client: client, store: store, logger: logger}
}

// Load fetches one season and upserts its players, then its game logs.
func (l *Loader) Load(ctx context.Context, season, seasonType string) (*LoadResult, error) {
	logger := l.logger.With("season", season, "season_type", seasonType)
	logger.Info("fetching league game log")

	resp, err := l.client.FetchLeagueGameLog(ctx, season, seasonType)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseGameLogs(resp)
	if err != nil {
		return nil, fmt.Errorf("parse game logs: %w", err)
	}
	if parsed.Skipped > 0 {
		logger.Warn("skipped incomplete game log rows", "rows", parsed.Skipped)
	}
	logger.Info("parsed game logs", "players", len(parsed.Players), "game_logs", len(parsed.GameLogs))

	players, err := l.store.UpsertPlayers(ctx, parsed.Players)
	if err != nil {
		return nil, fmt.Errorf("store players: %w", err)
	}
	logs, err := l.store.UpsertGameLogs(ctx, parsed.GameLogs)
	if err != nil {
		return nil, fmt.Errorf("store game logs: %w", err)
	}
	logger.Info("game logs loaded", "players", players, "game_logs", logs)
	return &LoadResult{Season: season, Players: players, GameLogs: logs, Skipped: parsed.Skipped}, nil
}
