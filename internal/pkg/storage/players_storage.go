package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

// gameLogColumns maps stats.nba.com headers to game_logs columns.
var gameLogColumns = map[string]string{
	"MIN":             "minutes_played",
	"FGM":             "fgm",
	"FGA":             "fga",
	"FG_PCT":          "fg_pct",
	"FG3M":            "fg3m",
	"FG3A":            "fg3a",
	"FG3_PCT":         "fg3_pct",
	"FTM":             "ftm",
	"FTA":             "fta",
	"FT_PCT":          "ft_pct",
	"OREB":            "oreb",
	"DREB":            "dreb",
	"REB":             "reb",
	"AST":             "ast",
	"STL":             "stl",
	"BLK":             "blk",
	"TOV":             "tov",
	"PF":              "pf",
	"PTS":             "pts",
	"PLUS_MINUS":      "plus_minus",
	"FANTASY_PTS":     "fantasy_pts",
	"VIDEO_AVAILABLE": "video_available",
}

// SQLPlayerStorage is the canonical player store: players plus their game logs.
type SQLPlayerStorage struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewPlayerStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*SQLPlayerStorage, error) {
	db, dialect, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("players store: %w", err)
	}
	s := NewPlayerStorageFromDB(db, dialect, logger)
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.logger.Info("player storage initialized", "driver", dialect)
	return s, nil
}

// NewPlayerStorageFromDB wraps an opened database. Call EnsureSchema before use.
func NewPlayerStorageFromDB(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLPlayerStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLPlayerStorage{db: db, dialect: dialect, logger: logger}
}

func (s *SQLPlayerStorage) EnsureSchema(ctx context.Context) error {
	return s.initSchema(ctx)
}

func (s *SQLPlayerStorage) initSchema(ctx context.Context) error {
	players := `
	CREATE TABLE IF NOT EXISTS players (
		player_id BIGINT PRIMARY KEY,
		primary_name TEXT NOT NULL UNIQUE,
		alternate_names TEXT,
		position TEXT,
		current_team TEXT
	)`

	var cols strings.Builder
	for _, h := range models.GameLogStatHeaders {
		typ := "INTEGER"
		if strings.HasSuffix(h, "_PCT") || h == "FANTASY_PTS" {
			typ = "REAL"
		}
		fmt.Fprintf(&cols, "\t\t%s %s,\n", gameLogColumns[h], typ)
	}
	gameLogs := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS game_logs (
		player_id BIGINT NOT NULL REFERENCES players(player_id),
		game_id TEXT NOT NULL,
		game_date TEXT,
		team_id BIGINT,
		team_abbreviation TEXT,
%s		PRIMARY KEY (player_id, game_id)
	)`, cols.String())

	for _, q := range []string{players, gameLogs} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// CanonicalNames returns every primary and non-empty alternate name, deduplicated and sorted.
func (s *SQLPlayerStorage) CanonicalNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT primary_name, alternate_names FROM players")
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var primary string
		var alternate sql.NullString
		if err := rows.Scan(&primary, &alternate); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		seen[primary] = struct{}{}
		if alternate.Valid && alternate.String != "" {
			seen[alternate.String] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// SetAlternateName stores alternate as the alias of the player known as canonical. A player whose
// primary name is canonical wins; otherwise the player currently carrying canonical as alias is
// updated. At most one player changes. The previous alias is overwritten.
// It returns the number of players updated.
func (s *SQLPlayerStorage) SetAlternateName(ctx context.Context, canonical, alternate string) (int64, error) {
	d := s.dialect
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin alias update: %w", err)
	}
	defer tx.Rollback()

	var playerID int64
	err = tx.QueryRowContext(ctx,
		"SELECT player_id FROM players WHERE primary_name = "+d.Placeholder(1), canonical).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx,
			"SELECT player_id FROM players WHERE alternate_names = "+d.Placeholder(1)+" ORDER BY player_id LIMIT 1",
			canonical).Scan(&playerID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find player %q: %w", canonical, err)
	}

	query := fmt.Sprintf("UPDATE players SET alternate_names = %s WHERE player_id = %s", d.Placeholder(1), d.Placeholder(2))
	res, err := tx.ExecContext(ctx, query, alternate, playerID)
	if err != nil {
		return 0, fmt.Errorf("update alternate name for %q: %w", canonical, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit alias update: %w", err)
	}
	return n, nil
}

// GetPlayer looks a player up by primary name. It returns nil when absent.
func (s *SQLPlayerStorage) GetPlayer(ctx context.Context, primaryName string) (*models.Player, error) {
	query := fmt.Sprintf(`SELECT player_id, primary_name, alternate_names, position, current_team
		FROM players WHERE primary_name = %s`, s.dialect.Placeholder(1))
	var (
		p                         models.Player
		alternate, position, team sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, primaryName).Scan(&p.ID, &p.PrimaryName, &alternate, &position, &team)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", primaryName, err)
	}
	p.AlternateName, p.Position, p.Team = alternate.String, position.String, team.String
	return &p, nil
}

// UpsertPlayers inserts players or refreshes name, position and team of existing ones.
// The alias column is never touched so reconciled aliases survive a reload.
func (s *SQLPlayerStorage) UpsertPlayers(ctx context.Context, players []models.Player) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`
	INSERT INTO players (player_id, primary_name, position, current_team)
	VALUES (%s)
	ON CONFLICT (player_id) DO UPDATE SET
		primary_name = excluded.primary_name,
		position = excluded.position,
		current_team = excluded.current_team`, s.dialect.Placeholders(4))

	return s.execBatch(ctx, "players", query, len(players), func(i int) []any {
		p := players[i]
		return []any{p.ID, p.PrimaryName, p.Position, p.Team}
	})
}

// UpsertGameLogs inserts game logs or overwrites the stats of existing (player, game) pairs.
func (s *SQLPlayerStorage) UpsertGameLogs(ctx context.Context, logs []models.GameLog) (int, error) {
	if len(logs) == 0 {
		return 0, nil
	}
	cols := []string{"player_id", "game_id", "game_date", "team_id", "team_abbreviation"}
	var updates []string
	for _, c := range cols[2:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	for _, h := range models.GameLogStatHeaders {
		c := gameLogColumns[h]
		cols = append(cols, c)
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	query := fmt.Sprintf("INSERT INTO game_logs (%s) VALUES (%s) ON CONFLICT (player_id, game_id) DO UPDATE SET %s",
		strings.Join(cols, ", "), s.dialect.Placeholders(len(cols)), strings.Join(updates, ", "))

	return s.execBatch(ctx, "game_logs", query, len(logs), func(i int) []any {
		l := logs[i]
		args := []any{l.PlayerID, l.GameID, l.GameDate, l.TeamID, l.TeamAbbreviation}
		for _, h := range models.GameLogStatHeaders {
			var v sql.NullFloat64
			if p := l.Stats[h]; p != nil {
				v = sql.NullFloat64{Float64: *p, Valid: true}
			}
			args = append(args, v)
		}
		return args
	})
}

// CountGameLogs returns the number of stored game logs.
func (s *SQLPlayerStorage) CountGameLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_logs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count game_logs: %w", err)
	}
	return n, nil
}

func (s *SQLPlayerStorage) execBatch(ctx context.Context, table, query string, n int, args func(i int) []any) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return 0, fmt.Errorf("upsert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	return n, nil
}

func (s *SQLPlayerStorage) Close() error {
	return s.db.Close()
}
