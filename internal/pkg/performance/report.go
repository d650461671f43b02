package performance

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// MarketResult is the outcome of one market within a run.
type MarketResult struct {
	MarketID   int            `json:"market_id"`
	Market     string         `json:"market"`
	Table      string         `json:"table"`
	Offers     int            `json:"offers"`
	Rows       int            `json:"rows"`
	Inserted   int64          `json:"inserted"`
	Players    int            `json:"players"`
	Bookmakers map[string]int `json:"bookmakers,omitempty"`
	Error      string         `json:"error,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

func (m MarketResult) Success() bool { return m.Error == "" }

// RunReport describes one ingestion run. It is built by a single goroutine and
// handed to the Tracker once finished.
type RunReport struct {
	RunID     string         `json:"run_id"`
	FetchedAt string         `json:"fetched_at"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Events    int            `json:"events"`
	Markets   []MarketResult `json:"markets"`
	Error     string         `json:"error,omitempty"`
}

func NewRunReport(runID, fetchedAt string, startedAt time.Time) *RunReport {
	return &RunReport{RunID: runID, FetchedAt: fetchedAt, StartedAt: startedAt}
}

// AddMarket appends a market outcome.
func (r *RunReport) AddMarket(m MarketResult) {
	r.Markets = append(r.Markets, m)
}

// Finish stamps the run duration and the run-level error, if any.
func (r *RunReport) Finish(end time.Time, err error) {
	r.Duration = end.Sub(r.StartedAt)
	if err != nil {
		r.Error = err.Error()
	}
}

func (r *RunReport) TotalRows() int {
	n := 0
	for _, m := range r.Markets {
		n += m.Rows
	}
	return n
}

func (r *RunReport) TotalInserted() int64 {
	var n int64
	for _, m := range r.Markets {
		n += m.Inserted
	}
	return n
}

// FailedMarkets returns the markets that did not complete.
func (r *RunReport) FailedMarkets() []MarketResult {
	var out []MarketResult
	for _, m := range r.Markets {
		if !m.Success() {
			out = append(out, m)
		}
	}
	return out
}

// Log writes the run summary at info level, one line per market.
func (r *RunReport) Log(logger *slog.Logger) {
	for _, m := range r.Markets {
		if !m.Success() {
			logger.Warn("market failed",
				"market", m.Market, "market_id", m.MarketID, "error", m.Error)
			continue
		}
		logger.Info("market summary",
			"market", m.Market,
			"market_id", m.MarketID,
			"offers", m.Offers,
			"rows", m.Rows,
			"inserted", m.Inserted,
			"unique_players", m.Players,
			"duration", m.Duration)
		for _, name := range sortedKeys(m.Bookmakers) {
			logger.Info("bookmaker total", "market", m.Market, "bookmaker", name, "rows", m.Bookmakers[name])
		}
	}
	logger.Info("run summary",
		"run_id", r.RunID,
		"fetched_at", r.FetchedAt,
		"events", r.Events,
		"markets", len(r.Markets),
		"failed_markets", len(r.FailedMarkets()),
		"rows", r.TotalRows(),
		"inserted", r.TotalInserted(),
		"duration", r.Duration)
}

// Text renders a short plain-text summary for chat notifications.
func (r *RunReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "NBA props run %s\n", r.FetchedAt)
	if r.Error != "" {
		fmt.Fprintf(&b, "FAILED: %s\n", r.Error)
	}
	fmt.Fprintf(&b, "events: %d, rows: %d, inserted: %d, took %s\n",
		r.Events, r.TotalRows(), r.TotalInserted(), r.Duration.Round(time.Millisecond))
	for _, m := range r.Markets {
		if m.Success() {
			fmt.Fprintf(&b, "✅ %s: %d rows, %d new, %d players\n", m.Market, m.Rows, m.Inserted, m.Players)
		} else {
			fmt.Fprintf(&b, "❌ %s: %s\n", m.Market, m.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
