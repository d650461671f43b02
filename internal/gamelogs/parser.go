package gamelogs

import (
	"errors"
	"fmt"
	"math"

	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

// ErrNoData is returned when the response carries no game log rows.
var ErrNoData = errors.New("no game log rows in response")

// LeagueGameLogResponse is the stats.nba.com tabular payload: parallel headers and rows.
type LeagueGameLogResponse struct {
	ResultSets []ResultSet `json:"resultSets"`
}

type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Parsed is the content of one game log response.
type Parsed struct {
	Players  []models.Player
	GameLogs []models.GameLog
	// Skipped counts rows without a player id, player name or game id.
	Skipped int
}

// ParseGameLogs reads the first result set. Players are deduplicated by id, first row wins,
// which with newest-first ordering is the player's current team.
func ParseGameLogs(resp *LeagueGameLogResponse) (*Parsed, error) {
	if resp == nil || len(resp.ResultSets) == 0 {
		return nil, ErrNoData
	}
	set := resp.ResultSets[0]
	if len(set.Headers) == 0 || len(set.RowSet) == 0 {
		return nil, ErrNoData
	}
	col := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		col[h] = i
	}
	for _, required := range []string{"PLAYER_ID", "PLAYER_NAME", "GAME_ID"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("result set %q has no %s column", set.Name, required)
		}
	}

	out := &Parsed{}
	seen := make(map[int64]bool)
	for _, row := range set.RowSet {
		r := rowReader{row: row, col: col}
		playerID := r.id("PLAYER_ID")
		gameID := r.str("GAME_ID")
		name := r.str("PLAYER_NAME")
		// a log needs its player row, which needs a name
		if playerID == 0 || gameID == "" || name == "" {
			out.Skipped++
			continue
		}
		team := r.str("TEAM_ABBREVIATION")
		if !seen[playerID] {
			seen[playerID] = true
			out.Players = append(out.Players, models.Player{
				ID:          playerID,
				PrimaryName: name,
				Position:    r.str("POSITION"),
				Team:        team,
			})
		}

		stats := make(map[string]*float64, len(models.GameLogStatHeaders))
		for _, h := range models.GameLogStatHeaders {
			stats[h] = r.num(h)
		}
		out.GameLogs = append(out.GameLogs, models.GameLog{
			PlayerID:         playerID,
			GameID:           gameID,
			GameDate:         r.str("GAME_DATE"),
			TeamID:           r.id("TEAM_ID"),
			TeamAbbreviation: team,
			Stats:            stats,
		})
	}
	return out, nil
}

type rowReader struct {
	row []any
	col map[string]int
}

func (r rowReader) value(name string) any {
	i, ok := r.col[name]
	if !ok || i >= len(r.row) {
		return nil
	}
	return r.row[i]
}

func (r rowReader) str(name string) string {
	switch v := r.value(name).(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func (r rowReader) num(name string) *float64 {
	v, ok := r.value(name).(float64)
	if !ok || math.IsNaN(v) {
		return nil
	}
	return &v
}

func (r rowReader) id(name string) int64 {
	if p := r.num(name); p != nil {
		return int64(*p)
	}
	return 0
}
