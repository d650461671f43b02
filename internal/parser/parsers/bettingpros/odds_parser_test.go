package bettingpros

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

const fetchedAt = "2024-12-10 18:00:00"

var testEvents = models.EventTeams{
	100: {ID: 100, Home: "LAL", Away: "DEN"},
}

func decodeOffers(t *testing.T, raw string) *OffersResponse {
	t.Helper()
	var resp OffersResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("decode offers: %v", err)
	}
	return &resp
}

// offerJSON wraps one selection's books into a full offer for LeBron (LAL) in event 100.
func offerJSON(eventID int, books string) string {
	return `{"offers":[{"event_id":` + strconv.Itoa(eventID) + `,"market_id":156,
		"participants":[{"name":"LeBron James","player":{"position":"SF","team":"LAL"}}],
		"selections":[{"label":"Over","books":` + books + `}]}]}`
}

func TestNormalizeKeepsMostRecentActiveLine(t *testing.T) {
	resp := decodeOffers(t, offerJSON(100, `[{"id":10,"lines":[
		{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"},
		{"active":false,"line":26.5,"cost":-120,"updated":"2024-12-10 17:59:00"},
		{"active":true,"line":25.5,"cost":-105,"updated":"2024-12-10 17:30:00"},
		{"active":true,"line":23.5,"cost":-130,"updated":"2024-12-10 16:00:00"}
	]}]`))

	rows := Normalize(resp, testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.PropLine != 25.5 || r.Odds == nil || *r.Odds != -105 || r.SourceUpdated != "2024-12-10 17:30:00" {
		t.Fatalf("picked %+v, want the 17:30 line", r)
	}
	if r.Bookmaker != "FanDuel" || r.Team != "LAL" || r.Opponent != "DEN" || r.Selection != "Over" {
		t.Fatalf("unexpected row %+v", r)
	}
	if r.FetchedAt != fetchedAt || r.Market != "Points o/u" || r.Position != "SF" {
		t.Fatalf("unexpected row %+v", r)
	}
}

func TestNormalizeTieGoesToLastSeen(t *testing.T) {
	resp := decodeOffers(t, offerJSON(100, `[{"id":12,"lines":[
		{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"},
		{"active":true,"line":25.5,"cost":-115,"updated":"2024-12-10 17:00:00"}
	]}]`))
	rows := Normalize(resp, testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 || rows[0].PropLine != 25.5 {
		t.Fatalf("rows = %+v, want the second line", rows)
	}
}

func TestNormalizeDropsBookWithoutActiveLine(t *testing.T) {
	resp := decodeOffers(t, offerJSON(100, `[
		{"id":10,"lines":[{"active":false,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]},
		{"id":19,"lines":[]},
		{"id":12,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]}
	]`))
	rows := Normalize(resp, testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 || rows[0].Bookmaker != "DraftKings" {
		t.Fatalf("rows = %+v, want only DraftKings", rows)
	}
}

func TestNormalizeUnknownEvent(t *testing.T) {
	resp := decodeOffers(t, offerJSON(999, `[{"id":10,"lines":[
		{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]}]`))
	rows := Normalize(resp, testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Team != models.UnknownValue || rows[0].Opponent != models.UnknownValue {
		t.Fatalf("team/opponent = %q/%q, want Unknown/Unknown", rows[0].Team, rows[0].Opponent)
	}
}

func TestNormalizeBookNames(t *testing.T) {
	books := `[
		{"id":0,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]},
		{"id":99,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]},
		{"id":33,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"}]}
	]`
	tests := []struct {
		name string
		opts NormalizeOptions
		want []string
	}{
		{"consensus excluded", NormalizeOptions{}, []string{"Book ID 99", "ESPNBet"}},
		{"consensus included", NormalizeOptions{IncludeConsensus: true}, []string{"Consensus", "Book ID 99", "ESPNBet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Normalize(decodeOffers(t, offerJSON(100, books)), testEvents, "Points o/u", fetchedAt, tt.opts)
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.want))
			}
			for i, w := range tt.want {
				if rows[i].Bookmaker != w {
					t.Errorf("row %d bookmaker = %q, want %q", i, rows[i].Bookmaker, w)
				}
			}
		})
	}
}

func TestNormalizeMissingFields(t *testing.T) {
	resp := decodeOffers(t, `{"offers":[{"event_id":100,"selections":[{"books":[
		{"id":10,"lines":[{"active":true,"line":"7.5"}]}
	]}]}]}`)
	rows := Normalize(resp, testEvents, "Assists o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Player != models.UnknownPlayer || r.Position != models.UnknownValue {
		t.Errorf("player/position = %q/%q", r.Player, r.Position)
	}
	if r.Selection != models.UnknownLabel {
		t.Errorf("selection = %q, want %q", r.Selection, models.UnknownLabel)
	}
	if r.Odds != nil {
		t.Errorf("odds = %d, want nil", *r.Odds)
	}
	if r.SourceUpdated != models.NotAvailable {
		t.Errorf("source updated = %q, want %q", r.SourceUpdated, models.NotAvailable)
	}
	if r.PropLine != 7.5 {
		t.Errorf("prop line = %v, want 7.5", r.PropLine)
	}
	// Unknown player team is not the home team, so the row is oriented from the visitor side.
	if r.Team != "DEN" || r.Opponent != "LAL" {
		t.Errorf("team/opponent = %q/%q, want DEN/LAL", r.Team, r.Opponent)
	}
}

func TestNormalizeVisitorOrientation(t *testing.T) {
	resp := decodeOffers(t, `{"offers":[{"event_id":100,
		"participants":[{"name":"Nikola Jokic","player":{"position":"C","team":"DEN"}}],
		"selections":[{"label":"Under","books":[{"id":19,"lines":[
			{"active":true,"line":11.5,"cost":-120.4,"updated":"2024-12-10 17:00:00"}]}]}]}]}`)
	rows := Normalize(resp, testEvents, "Rebounds o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Team != "DEN" || rows[0].Opponent != "LAL" {
		t.Fatalf("team/opponent = %q/%q, want DEN/LAL", rows[0].Team, rows[0].Opponent)
	}
	if rows[0].Odds == nil || *rows[0].Odds != -120 {
		t.Fatalf("odds = %v, want -120", rows[0].Odds)
	}
}

func TestNormalizeDropsBookWhenLatestLineHasNoThreshold(t *testing.T) {
	tests := []struct {
		name  string
		books string
		want  []float64
	}{
		{
			name: "newest line without threshold drops the book",
			books: `[{"id":10,"lines":[
				{"active":true,"line":24.5,"cost":-110,"updated":"2024-12-10 17:00:00"},
				{"active":true,"cost":-150,"updated":"2024-12-10 17:45:00"}]}]`,
			want: nil,
		},
		{
			name: "older line without threshold is superseded",
			books: `[{"id":10,"lines":[
				{"active":true,"cost":-150,"updated":"2024-12-10 17:00:00"},
				{"active":true,"line":25.5,"cost":-110,"updated":"2024-12-10 17:45:00"}]}]`,
			want: []float64{25.5},
		},
		{
			name: "other books are unaffected",
			books: `[{"id":10,"lines":[{"active":true,"cost":-150,"updated":"2024-12-10 17:45:00"}]},
				{"id":12,"lines":[{"active":true,"line":24.5,"cost":-105,"updated":"2024-12-10 17:00:00"}]}]`,
			want: []float64{24.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Normalize(decodeOffers(t, offerJSON(100, tt.books)), testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
			if len(rows) != len(tt.want) {
				t.Fatalf("rows = %+v, want lines %v", rows, tt.want)
			}
			for i, r := range rows {
				if r.PropLine != tt.want[i] {
					t.Errorf("row %d line = %v, want %v", i, r.PropLine, tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeRowsPerSelectionAndBook(t *testing.T) {
	resp := decodeOffers(t, `{"offers":[{"event_id":100,
		"participants":[{"name":"LeBron James","player":{"team":"LAL"}}],
		"selections":[
			{"label":"Over","books":[
				{"id":10,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"a"}]},
				{"id":12,"lines":[{"active":true,"line":24.5,"cost":-105,"updated":"a"}]}]},
			{"label":"Under","books":[
				{"id":10,"lines":[{"active":true,"line":24.5,"cost":-110,"updated":"a"}]}]}
		]}]}`)
	rows := Normalize(resp, testEvents, "Points o/u", fetchedAt, NormalizeOptions{})
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	keys := make(map[models.PropKey]bool)
	for _, r := range rows {
		keys[r.Key()] = true
	}
	if len(keys) != 3 {
		t.Fatalf("rows share keys: %+v", rows)
	}

	s := Summarize(rows)
	if s.Rows != 3 || s.Players != 1 || s.Bookmakers["FanDuel"] != 2 || s.Bookmakers["DraftKings"] != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if names := s.BookmakerNames(); len(names) != 2 || names[0] != "DraftKings" {
		t.Fatalf("BookmakerNames = %v", names)
	}
}

func TestNormalizeNilResponse(t *testing.T) {
	if rows := Normalize(nil, testEvents, "Points o/u", fetchedAt, NormalizeOptions{}); rows != nil {
		t.Fatalf("rows = %v, want nil", rows)
	}
}
