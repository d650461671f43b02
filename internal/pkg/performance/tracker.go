package performance

import (
	"sync"
	"time"
)

// Tracker accumulates run reports for the status server. Safe for concurrent use.
type Tracker struct {
	mu sync.RWMutex

	totalRuns     int
	failedRuns    int
	totalRows     int
	totalInserted int64
	failedMarkets int
	totalDuration time.Duration

	last *RunReport
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Record stores r as the latest report and folds it into the totals.
func (t *Tracker) Record(r *RunReport) {
	if r == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRuns++
	if r.Error != "" {
		t.failedRuns++
	}
	t.totalRows += r.TotalRows()
	t.totalInserted += r.TotalInserted()
	t.failedMarkets += len(r.FailedMarkets())
	t.totalDuration += r.Duration
	t.last = r
}

// Last returns the most recent report or nil.
func (t *Tracker) Last() *RunReport {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// MetricsResponse is the JSON body of /metrics.
type MetricsResponse struct {
	TotalRuns       int    `json:"total_runs"`
	FailedRuns      int    `json:"failed_runs"`
	TotalRows       int    `json:"total_rows"`
	TotalInserted   int64  `json:"total_inserted"`
	FailedMarkets   int    `json:"failed_markets"`
	AvgRunDuration  string `json:"avg_run_duration"`
	LastRunID       string `json:"last_run_id,omitempty"`
	LastRunFinished string `json:"last_run_finished,omitempty"`
}

func (t *Tracker) Metrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	resp := MetricsResponse{
		TotalRuns:     t.totalRuns,
		FailedRuns:    t.failedRuns,
		TotalRows:     t.totalRows,
		TotalInserted: t.totalInserted,
		FailedMarkets: t.failedMarkets,
	}
	if t.totalRuns > 0 {
		resp.AvgRunDuration = (t.totalDuration / time.Duration(t.totalRuns)).String()
	}
	if t.last != nil {
		resp.LastRunID = t.last.RunID
		resp.LastRunFinished = t.last.StartedAt.Add(t.last.Duration).Format(time.RFC3339)
	}
	return resp
}
