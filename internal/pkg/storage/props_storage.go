package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

const (
	propColumns    = "ScriptTimestamp, Market, Player, Position, Team, Opponent, Selection, PropLine, Odds, Bookie, SourceUpdatedTimestamp"
	propKeyColumns = "ScriptTimestamp, Player, Selection, Bookie, PropLine"
	propColumnsLen = 11
)

var (
	tableNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)
	marketTablePattern = regexp.MustCompile(`^market_[0-9]+$`)
)

// SQLPropsStorage keeps prop rows in one table per market.
type SQLPropsStorage struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewPropsStorage opens the odds store described by cfg.
func NewPropsStorage(cfg config.DatabaseConfig, logger *slog.Logger) (*SQLPropsStorage, error) {
	db, dialect, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("props store: %w", err)
	}
	s := NewPropsStorageFromDB(db, dialect, logger)
	s.logger.Info("props storage initialized", "driver", dialect)
	return s, nil
}

// NewPropsStorageFromDB wraps an already opened database.
func NewPropsStorageFromDB(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLPropsStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLPropsStorage{db: db, dialect: dialect, logger: logger}
}

func validateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// EnsureSchema creates table if it does not exist. Calling it repeatedly is a no-op.
func (s *SQLPropsStorage) EnsureSchema(ctx context.Context, table string) error {
	if err := validateTableName(table); err != nil {
		return err
	}
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		ScriptTimestamp TEXT NOT NULL,
		Market TEXT,
		Player TEXT NOT NULL,
		Position TEXT,
		Team TEXT,
		Opponent TEXT,
		Selection TEXT NOT NULL,
		PropLine REAL NOT NULL,
		Odds INTEGER,
		Bookie TEXT NOT NULL,
		SourceUpdatedTimestamp TEXT,
		PRIMARY KEY (%s)
	)`, table, propKeyColumns)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// UpsertRows inserts rows into table, ignoring rows whose key already exists, and returns
// how many were new. All rows go in one transaction: on error nothing is written.
func (s *SQLPropsStorage) UpsertRows(ctx context.Context, table string, rows []models.PropRow) (int64, error) {
	if err := validateTableName(table); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		table, propColumns, s.dialect.Placeholders(propColumnsLen), propKeyColumns)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range rows {
		var odds sql.NullInt64
		if r.Odds != nil {
			odds = sql.NullInt64{Int64: *r.Odds, Valid: true}
		}
		res, err := stmt.ExecContext(ctx,
			r.FetchedAt, r.Market, r.Player, r.Position, r.Team, r.Opponent,
			r.Selection, r.PropLine, odds, r.Bookmaker, r.SourceUpdated,
		)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}
	return inserted, nil
}

// MarketTables lists the per-market tables in name order.
func (s *SQLPropsStorage) MarketTables(ctx context.Context) ([]string, error) {
	query := "SELECT name FROM sqlite_master WHERE type = 'table'"
	if s.dialect == DialectPostgres {
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if marketTablePattern.MatchString(name) {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(tables)
	return tables, nil
}

// DistinctPlayers returns every player name seen in any market table, sorted.
// A table that cannot be read is logged and skipped.
func (s *SQLPropsStorage) DistinctPlayers(ctx context.Context) ([]string, error) {
	tables, err := s.MarketTables(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, table := range tables {
		names, err := s.distinctPlayersIn(ctx, table)
		if err != nil {
			s.logger.Warn("skipped table while collecting players", "table", table, "error", err)
			continue
		}
		for _, n := range names {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *SQLPropsStorage) distinctPlayersIn(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT Player FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name.Valid && name.String != "" {
			names = append(names, name.String)
		}
	}
	return names, rows.Err()
}

// CountRows returns the number of rows in table.
func (s *SQLPropsStorage) CountRows(ctx context.Context, table string) (int64, error) {
	if err := validateTableName(table); err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *SQLPropsStorage) Close() error {
	return s.db.Close()
}
