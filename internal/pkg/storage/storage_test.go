package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

func newTestPropsStorage(t *testing.T) *SQLPropsStorage {
	t.Helper()
	s, err := NewPropsStorage(config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "props.db"),
	}, nil)
	if err != nil {
		t.Fatalf("NewPropsStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestPlayerStorage(t *testing.T) *SQLPlayerStorage {
	t.Helper()
	s, err := NewPlayerStorage(context.Background(), config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "nested", "players.db"),
	}, nil)
	if err != nil {
		t.Fatalf("NewPlayerStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func odds(v int64) *int64 { return &v }

func sampleRows() []models.PropRow {
	base := models.PropRow{
		FetchedAt:     "2024-12-10 18:00:00",
		Market:        "Points o/u",
		Player:        "LeBron James",
		Position:      "SF",
		Team:          "LAL",
		Opponent:      "DEN",
		SourceUpdated: "2024-12-10 17:55:00",
	}
	over := base
	over.Selection, over.PropLine, over.Odds, over.Bookmaker = "Over", 24.5, odds(-110), "FanDuel"
	under := base
	under.Selection, under.PropLine, under.Odds, under.Bookmaker = "Under", 24.5, odds(-115), "FanDuel"
	noPrice := base
	noPrice.Selection, noPrice.PropLine, noPrice.Odds, noPrice.Bookmaker = "Over", 25.5, nil, "DraftKings"
	return []models.PropRow{over, under, noPrice}
}

func TestDialectPlaceholders(t *testing.T) {
	tests := []struct {
		dialect Dialect
		count   int
		want    string
	}{
		{DialectSQLite, 3, "?, ?, ?"},
		{DialectPostgres, 3, "$1, $2, $3"},
		{DialectPostgres, 1, "$1"},
		{DialectSQLite, 0, ""},
	}
	for _, tt := range tests {
		if got := tt.dialect.Placeholders(tt.count); got != tt.want {
			t.Errorf("%s.Placeholders(%d) = %q, want %q", tt.dialect, tt.count, got, tt.want)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, _, err := Open(config.DatabaseConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, _, err := Open(config.DatabaseConfig{Driver: "sqlite3"}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := newTestPropsStorage(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.EnsureSchema(ctx, "market_156"); err != nil {
			t.Fatalf("EnsureSchema #%d: %v", i+1, err)
		}
	}
	tables, err := s.MarketTables(ctx)
	if err != nil {
		t.Fatalf("MarketTables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "market_156" {
		t.Fatalf("tables = %v, want [market_156]", tables)
	}
}

func TestEnsureSchemaRejectsBadTableName(t *testing.T) {
	s := newTestPropsStorage(t)
	for _, name := range []string{"", "market_1; DROP TABLE x", "1market", "market-156"} {
		if err := s.EnsureSchema(context.Background(), name); err == nil {
			t.Errorf("EnsureSchema(%q) succeeded, want error", name)
		}
	}
}

func TestUpsertRowsIdempotent(t *testing.T) {
	s := newTestPropsStorage(t)
	ctx := context.Background()
	if err := s.EnsureSchema(ctx, "market_156"); err != nil {
		t.Fatal(err)
	}
	rows := sampleRows()

	inserted, err := s.UpsertRows(ctx, "market_156", rows)
	if err != nil {
		t.Fatalf("first UpsertRows: %v", err)
	}
	if inserted != int64(len(rows)) {
		t.Fatalf("first run inserted %d, want %d", inserted, len(rows))
	}

	inserted, err = s.UpsertRows(ctx, "market_156", rows)
	if err != nil {
		t.Fatalf("second UpsertRows: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("second run inserted %d, want 0", inserted)
	}

	n, err := s.CountRows(ctx, "market_156")
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("row count = %d, want %d", n, len(rows))
	}
}

func TestUpsertRowsNewFetchTimeAddsRows(t *testing.T) {
	s := newTestPropsStorage(t)
	ctx := context.Background()
	if err := s.EnsureSchema(ctx, "market_156"); err != nil {
		t.Fatal(err)
	}
	rows := sampleRows()
	if _, err := s.UpsertRows(ctx, "market_156", rows); err != nil {
		t.Fatal(err)
	}
	for i := range rows {
		rows[i].FetchedAt = "2024-12-10 18:30:00"
	}
	inserted, err := s.UpsertRows(ctx, "market_156", rows)
	if err != nil {
		t.Fatal(err)
	}
	if inserted != int64(len(rows)) {
		t.Fatalf("inserted %d, want %d", inserted, len(rows))
	}
}

func TestUpsertRowsRollsBackOnError(t *testing.T) {
	s := newTestPropsStorage(t)
	ctx := context.Background()
	// Same layout, but the CHECK rejects the last sample row after two good inserts.
	ddl := `CREATE TABLE market_157 (
		ScriptTimestamp TEXT, Market TEXT, Player TEXT, Position TEXT, Team TEXT, Opponent TEXT,
		Selection TEXT, PropLine REAL, Odds INTEGER, Bookie TEXT, SourceUpdatedTimestamp TEXT,
		PRIMARY KEY (ScriptTimestamp, Player, Selection, Bookie, PropLine),
		CHECK (Bookie <> 'DraftKings')
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureSchema(ctx, "market_157"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertRows(ctx, "market_157", sampleRows()); err == nil {
		t.Fatal("expected insert error")
	}
	n, err := s.CountRows(ctx, "market_157")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("row count = %d after failed upsert, want 0", n)
	}
}

func TestDistinctPlayers(t *testing.T) {
	s := newTestPropsStorage(t)
	ctx := context.Background()
	for _, table := range []string{"market_156", "market_157"} {
		if err := s.EnsureSchema(ctx, table); err != nil {
			t.Fatal(err)
		}
	}
	rows := sampleRows()
	if _, err := s.UpsertRows(ctx, "market_156", rows); err != nil {
		t.Fatal(err)
	}
	other := rows[0]
	other.Player = "Nikola Jokic"
	if _, err := s.UpsertRows(ctx, "market_157", []models.PropRow{rows[0], other}); err != nil {
		t.Fatal(err)
	}
	// Non-market tables are ignored.
	if _, err := s.db.ExecContext(ctx, "CREATE TABLE notes (Player TEXT)"); err != nil {
		t.Fatal(err)
	}

	got, err := s.DistinctPlayers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"LeBron James", "Nikola Jokic"}
	if len(got) != len(want) {
		t.Fatalf("DistinctPlayers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistinctPlayers = %v, want %v", got, want)
		}
	}
}

func stat(v float64) *float64 { return &v }

func TestPlayerStorageUpsertAndAliases(t *testing.T) {
	s := newTestPlayerStorage(t)
	ctx := context.Background()

	players := []models.Player{
		{ID: 2544, PrimaryName: "LeBron James", Position: "F", Team: "LAL"},
		{ID: 203999, PrimaryName: "Nikola Jokic", Team: "DEN"},
	}
	if _, err := s.UpsertPlayers(ctx, players); err != nil {
		t.Fatalf("UpsertPlayers: %v", err)
	}

	n, err := s.SetAlternateName(ctx, "Nikola Jokic", "Nikola Jokić")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("SetAlternateName updated %d rows, want 1", n)
	}

	// Matching on the current alias also works and overwrites it.
	if _, err := s.SetAlternateName(ctx, "Nikola Jokić", "N. Jokic"); err != nil {
		t.Fatal(err)
	}
	p, err := s.GetPlayer(ctx, "Nikola Jokic")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.AlternateName != "N. Jokic" {
		t.Fatalf("player = %+v, want alias N. Jokic", p)
	}

	// Reloading players must keep the alias.
	players[1].Team = "DEN2"
	if _, err := s.UpsertPlayers(ctx, players); err != nil {
		t.Fatal(err)
	}
	p, err = s.GetPlayer(ctx, "Nikola Jokic")
	if err != nil {
		t.Fatal(err)
	}
	if p.AlternateName != "N. Jokic" || p.Team != "DEN2" {
		t.Fatalf("after reload player = %+v", p)
	}

	names, err := s.CanonicalNames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"LeBron James", "N. Jokic", "Nikola Jokic"}
	if len(names) != len(want) {
		t.Fatalf("CanonicalNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("CanonicalNames = %v, want %v", names, want)
		}
	}

	missing, err := s.GetPlayer(ctx, "Nobody")
	if err != nil || missing != nil {
		t.Fatalf("GetPlayer(Nobody) = %+v, %v", missing, err)
	}
}

func TestSetAlternateNameUpdatesOnePlayer(t *testing.T) {
	s := newTestPlayerStorage(t)
	ctx := context.Background()

	if _, err := s.UpsertPlayers(ctx, []models.Player{
		{ID: 1, PrimaryName: "Jalen Williams", Team: "OKC"},
		{ID: 2, PrimaryName: "Jaylin Williams", Team: "OKC"},
		{ID: 3, PrimaryName: "Mark Williams", Team: "CHA"},
	}); err != nil {
		t.Fatal(err)
	}
	// Player 2 carries player 1's primary name as alias.
	if _, err := s.SetAlternateName(ctx, "Jaylin Williams", "Jalen Williams"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		canonical string
		alias     string
		wantN     int64
		wantOwner string
	}{
		{"primary name wins over alias", "Jalen Williams", "J. Williams", 1, "Jalen Williams"},
		{"alias used when no primary matches", "J. Williams", "Jal. Williams", 1, "Jalen Williams"},
		{"unknown name updates nothing", "Nobody", "N. Body", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.SetAlternateName(ctx, tt.canonical, tt.alias)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.wantN {
				t.Fatalf("updated %d players, want %d", n, tt.wantN)
			}
			if tt.wantOwner == "" {
				return
			}
			p, err := s.GetPlayer(ctx, tt.wantOwner)
			if err != nil {
				t.Fatal(err)
			}
			if p.AlternateName != tt.alias {
				t.Fatalf("%s alias = %q, want %q", tt.wantOwner, p.AlternateName, tt.alias)
			}
		})
	}

	// Player 2 keeps its alias: only the primary-name match was touched.
	p, err := s.GetPlayer(ctx, "Jaylin Williams")
	if err != nil {
		t.Fatal(err)
	}
	if p.AlternateName != "Jalen Williams" {
		t.Fatalf("Jaylin Williams alias = %q, want unchanged", p.AlternateName)
	}

	// With no primary match, only one alias holder is updated.
	if _, err := s.SetAlternateName(ctx, "Mark Williams", "Jal. W"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetAlternateName(ctx, "Jaylin Williams", "Jal. W"); err != nil {
		t.Fatal(err)
	}
	n, err := s.SetAlternateName(ctx, "Jal. W", "JW")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("alias fallback updated %d players, want 1", n)
	}
}

func TestPlayerStorageUpsertGameLogs(t *testing.T) {
	s := newTestPlayerStorage(t)
	ctx := context.Background()
	if _, err := s.UpsertPlayers(ctx, []models.Player{{ID: 2544, PrimaryName: "LeBron James"}}); err != nil {
		t.Fatal(err)
	}
	log := models.GameLog{
		PlayerID:         2544,
		GameID:           "0022400001",
		GameDate:         "2024-10-22",
		TeamID:           1610612747,
		TeamAbbreviation: "LAL",
		Stats:            map[string]*float64{"PTS": stat(16), "FG_PCT": stat(0.538)},
	}
	for i := 0; i < 2; i++ {
		if _, err := s.UpsertGameLogs(ctx, []models.GameLog{log}); err != nil {
			t.Fatalf("UpsertGameLogs #%d: %v", i+1, err)
		}
	}
	n, err := s.CountGameLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("game_logs count = %d, want 1", n)
	}

	var pts float64
	if err := s.db.QueryRowContext(ctx, "SELECT pts FROM game_logs WHERE player_id = ?", 2544).Scan(&pts); err != nil {
		t.Fatal(err)
	}
	if pts != 16 {
		t.Fatalf("pts = %v, want 16", pts)
	}

	orphan := log
	orphan.PlayerID = 1
	if _, err := s.UpsertGameLogs(ctx, []models.GameLog{orphan}); err == nil {
		t.Fatal("expected foreign key violation for unknown player")
	}
}

func TestNopRunLock(t *testing.T) {
	release, err := NopRunLock{}.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := release(context.Background()); err != nil {
		t.Fatal(err)
	}
	lock, closeFn, err := NewRunLock(config.RedisConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, ok := lock.(NopRunLock); !ok {
		t.Fatalf("NewRunLock without addr = %T, want NopRunLock", lock)
	}
}
