package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
)

// Dialect is the database/sql driver name a store was opened with.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns "?, ?, ?" or "$1, $2, $3" for count parameters.
func (d Dialect) Placeholders(count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ph, ", ")
}

// Open opens and pings the database described by cfg. Runs are sequential, so the
// pool is capped at a single connection.
func Open(cfg config.DatabaseConfig) (*sql.DB, Dialect, error) {
	if cfg.DSN == "" {
		return nil, "", fmt.Errorf("database DSN is required")
	}

	var (
		dialect Dialect
		dsn     = cfg.DSN
	)
	switch Dialect(cfg.Driver) {
	case DialectSQLite, "":
		dialect = DialectSQLite
		if err := ensureDataDir(dsn); err != nil {
			return nil, "", err
		}
		dsn = sqliteDSN(dsn)
	case DialectPostgres:
		dialect = DialectPostgres
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// sqliteDSN turns on foreign keys and a busy timeout unless the DSN sets its own options.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?_foreign_keys=on&_busy_timeout=5000"
}

func ensureDataDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
