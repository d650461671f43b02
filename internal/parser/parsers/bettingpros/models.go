package bettingpros

import "github.com/shopspring/decimal"

// API models for the BettingPros v3 API.
// Events: GET /v3/events?sport=NBA&date=2024-12-10
// Offers: GET /v3/offers?sport=NBA&market_id=156&event_id=1:2:3&location=OH&limit=100&page=1
//
// Every field is optional on the wire. Missing strings decode to "" and are
// replaced with placeholders by the normalizer.

// EventsResponse is the /v3/events payload.
type EventsResponse struct {
	Events []APIEvent `json:"events"`
}

// APIEvent is one game. Home and Visitor are team abbreviations.
type APIEvent struct {
	ID      int64  `json:"id"`
	Home    string `json:"home"`
	Visitor string `json:"visitor"`
}

// OffersResponse is the /v3/offers payload.
type OffersResponse struct {
	Offers []Offer `json:"offers"`
}

// Offer is one player prop in one market for one event.
type Offer struct {
	EventID      int64         `json:"event_id"`
	MarketID     int           `json:"market_id"`
	Participants []Participant `json:"participants"`
	Selections   []Selection   `json:"selections"`
}

// Participant is the subject of an offer. Only the first one is used.
type Participant struct {
	Name   string             `json:"name"`
	Player *ParticipantPlayer `json:"player"`
}

type ParticipantPlayer struct {
	Position string `json:"position"`
	Team     string `json:"team"`
}

// Selection is one side of an offer ("Over" / "Under").
type Selection struct {
	Label string `json:"label"`
	Books []Book `json:"books"`
}

// Book is one bookmaker's quote history for a selection.
type Book struct {
	ID    *int   `json:"id"`
	Lines []Line `json:"lines"`
}

// Line is one quote. Updated is "YYYY-MM-DD HH:MM:SS" and compares lexicographically.
type Line struct {
	Active  bool             `json:"active"`
	Line    *decimal.Decimal `json:"line"`
	Cost    *decimal.Decimal `json:"cost"`
	Updated string           `json:"updated"`
}
