package models

// GameLog is one player's box score line for one game, as published by stats.nba.com.
type GameLog struct {
	PlayerID         int64
	GameID           string
	GameDate         string
	TeamID           int64
	TeamAbbreviation string
	// Stats holds the numeric box score columns keyed by their stats.nba.com header
	// (see GameLogStatHeaders). A nil value is a missing stat.
	Stats map[string]*float64
}

// GameLogStatHeaders are the leaguegamelog headers persisted as game_logs columns, in column order.
var GameLogStatHeaders = []string{
	"MIN", "FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT", "OREB", "DREB", "REB", "AST", "STL", "BLK",
	"TOV", "PF", "PTS", "PLUS_MINUS", "FANTASY_PTS", "VIDEO_AVAILABLE",
}
