package models

import (
	"sort"
	"time"
)

// FetchTimestampLayout is how a run's fetch timestamp is rendered and stored.
const FetchTimestampLayout = "2006-01-02 15:04:05"

// Placeholders written when a payload field is missing.
const (
	UnknownValue  = "Unknown"
	UnknownPlayer = "Unknown Player"
	UnknownLabel  = "Unknown Label"
	NotAvailable  = "N/A"
)

// Event is one game on the slate. Only used to resolve team/opponent for a run.
type Event struct {
	ID   int64
	Home string
	Away string
}

// EventTeams maps event id to its teams.
type EventTeams map[int64]Event

// IDs returns the event ids in ascending order.
func (e EventTeams) IDs() []int64 {
	ids := make([]int64, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PropRow is one persisted observation: a bookmaker's latest active line for
// one side of one player's prop at fetch time.
type PropRow struct {
	FetchedAt     string
	Market        string
	Player        string
	Position      string
	Team          string
	Opponent      string
	Selection     string
	PropLine      float64
	Odds          *int64 // nil when the book did not publish a price
	Bookmaker     string
	SourceUpdated string
}

// PropKey is the natural key rows are deduplicated on.
type PropKey struct {
	FetchedAt string
	Player    string
	Selection string
	Bookmaker string
	PropLine  float64
}

func (r PropRow) Key() PropKey {
	return PropKey{
		FetchedAt: r.FetchedAt,
		Player:    r.Player,
		Selection: r.Selection,
		Bookmaker: r.Bookmaker,
		PropLine:  r.PropLine,
	}
}

// FormatFetchTime renders t with FetchTimestampLayout.
func FormatFetchTime(t time.Time) string {
	return t.Format(FetchTimestampLayout)
}

// Player is a canonical identity record from the game-log store.
// AlternateName is the single alias slot set by name reconciliation.
type Player struct {
	ID            int64
	PrimaryName   string
	AlternateName string
	Position      string
	Team          string
}
