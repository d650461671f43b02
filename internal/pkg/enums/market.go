package enums

import (
	"fmt"
	"sort"
)

// Market is a BettingPros prop market id.
type Market int

const (
	MarketAssists               Market = 151
	MarketBlocks                Market = 152
	MarketPoints                Market = 156
	MarketRebounds              Market = 157
	MarketSteals                Market = 160
	MarketThreesMade            Market = 162
	MarketPointsAssists         Market = 335
	MarketPointsRebounds        Market = 336
	MarketReboundsAssists       Market = 337
	MarketPointsReboundsAssists Market = 338
	MarketFantasyScore          Market = 346
)

var marketNames = map[Market]string{
	MarketPoints:                "Points o/u",
	MarketRebounds:              "Rebounds o/u",
	MarketAssists:               "Assists o/u",
	MarketThreesMade:            "3PM o/u",
	MarketSteals:                "Steals o/u",
	MarketBlocks:                "Blocks o/u",
	MarketPointsAssists:         "Points+Assists",
	MarketPointsRebounds:        "Points+Rebounds",
	MarketReboundsAssists:       "Rebounds+Assists",
	MarketPointsReboundsAssists: "Points+Rebounds+Assists",
	MarketFantasyScore:          "Fantasy Score",
}

// Name returns the display label. Unknown ids get "Market ID <n>".
func (m Market) Name() string {
	if name, ok := marketNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Market ID %d", int(m))
}

// IsKnown reports whether the id is in the fixed market table.
func (m Market) IsKnown() bool {
	_, ok := marketNames[m]
	return ok
}

// TableName is the per-market odds table, e.g. market_156.
func (m Market) TableName() string {
	return fmt.Sprintf("market_%d", int(m))
}

func (m Market) String() string {
	return m.Name()
}

// AllMarkets returns every known market ordered by id.
func AllMarkets() []Market {
	out := make([]Market, 0, len(marketNames))
	for m := range marketNames {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseMarkets converts configured ids. Empty input selects every known market.
// Unknown ids are rejected so a typo in config does not silently fetch nothing.
func ParseMarkets(ids []int) ([]Market, error) {
	if len(ids) == 0 {
		return AllMarkets(), nil
	}
	out := make([]Market, 0, len(ids))
	seen := make(map[Market]bool, len(ids))
	for _, id := range ids {
		m := Market(id)
		if !m.IsKnown() {
			return nil, fmt.Errorf("unknown market id %d", id)
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}
