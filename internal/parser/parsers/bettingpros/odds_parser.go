package bettingpros

import (
	"log/slog"
	"sort"

	"github.com/Vodeneev/nbaprops/internal/pkg/enums"
	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

// NormalizeOptions tune Normalize. The zero value excludes the consensus book.
type NormalizeOptions struct {
	IncludeConsensus bool
	Logger           *slog.Logger
}

// Normalize flattens offers into one row per (offer, selection, book), keeping for every
// book only its most recently updated active line. It never fails: missing fields become
// placeholders and rows for unknown events are kept with "Unknown" teams.
func Normalize(resp *OffersResponse, events models.EventTeams, marketName, fetchedAt string, opts NormalizeOptions) []models.PropRow {
	if resp == nil {
		return nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var rows []models.PropRow
	unkeyed := 0
	for _, offer := range resp.Offers {
		player, position, playerTeam := offerSubject(offer)
		team, opponent := resolveTeams(playerTeam, events, offer.EventID)

		for _, sel := range offer.Selections {
			label := orDefault(sel.Label, models.UnknownLabel)
			for _, book := range sel.Books {
				if book.ID != nil && *book.ID == enums.ConsensusBookID && !opts.IncludeConsensus {
					continue
				}
				line := latestActiveLine(book.Lines)
				if line == nil {
					continue
				}
				if line.Line == nil {
					unkeyed++
					continue
				}
				rows = append(rows, models.PropRow{
					FetchedAt:     fetchedAt,
					Market:        marketName,
					Player:        player,
					Position:      position,
					Team:          team,
					Opponent:      opponent,
					Selection:     label,
					PropLine:      line.Line.InexactFloat64(),
					Odds:          lineOdds(line),
					Bookmaker:     bookName(book.ID),
					SourceUpdated: orDefault(line.Updated, models.NotAvailable),
				})
			}
		}
	}
	if unkeyed > 0 {
		logger.Warn("bettingpros: dropped books whose latest line has no threshold",
			slog.String("market", marketName), slog.Int("books", unkeyed))
	}
	return rows
}

func offerSubject(offer Offer) (name, position, team string) {
	if len(offer.Participants) == 0 {
		return models.UnknownPlayer, models.UnknownValue, models.UnknownValue
	}
	p := offer.Participants[0]
	name = orDefault(p.Name, models.UnknownPlayer)
	position, team = models.UnknownValue, models.UnknownValue
	if p.Player != nil {
		position = orDefault(p.Player.Position, models.UnknownValue)
		team = orDefault(p.Player.Team, models.UnknownValue)
	}
	return name, position, team
}

// resolveTeams orients the event from the player's side: the player's team first.
func resolveTeams(playerTeam string, events models.EventTeams, eventID int64) (team, opponent string) {
	ev, ok := events[eventID]
	if !ok {
		return models.UnknownValue, models.UnknownValue
	}
	if playerTeam == ev.Home {
		return ev.Home, ev.Away
	}
	return ev.Away, ev.Home
}

// latestActiveLine picks the active line with the greatest Updated; on equal timestamps the
// later line wins. The pick may lack a threshold, in which case the book yields no row.
func latestActiveLine(lines []Line) *Line {
	var best *Line
	for i := range lines {
		l := &lines[i]
		if !l.Active {
			continue
		}
		if best == nil || l.Updated >= best.Updated {
			best = l
		}
	}
	return best
}

func lineOdds(l *Line) *int64 {
	if l.Cost == nil {
		return nil
	}
	v := l.Cost.Round(0).IntPart()
	return &v
}

func bookName(id *int) string {
	if id == nil {
		return models.UnknownValue
	}
	return enums.BookmakerName(*id)
}

// Summary is the per-market digest logged after normalization.
type Summary struct {
	Rows       int
	Players    int
	Bookmakers map[string]int
}

// Summarize counts distinct players and rows per bookmaker.
func Summarize(rows []models.PropRow) Summary {
	players := make(map[string]struct{})
	books := make(map[string]int)
	for _, r := range rows {
		players[r.Player] = struct{}{}
		books[r.Bookmaker]++
	}
	return Summary{Rows: len(rows), Players: len(players), Bookmakers: books}
}

// BookmakerNames returns the bookmakers of s in alphabetical order.
func (s Summary) BookmakerNames() []string {
	names := make([]string, 0, len(s.Bookmakers))
	for name := range s.Bookmakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
