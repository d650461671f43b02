package gamelogs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	defaultBaseURL   = "https://stats.nba.com"
	leagueGameLogAPI = "/stats/leaguegamelog"
	statsPageURL     = "https://www.nba.com/stats/"
)

// stats.nba.com drops requests that do not look like they come from nba.com.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Origin":          "https://www.nba.com",
	"Referer":         "https://www.nba.com/stats/",
	"Sec-Fetch-Site":  "same-site",
	"Sec-Fetch-Mode":  "cors",
	"Sec-Fetch-Dest":  "empty",
}

// Fetcher returns the body of a GET to rawURL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches with a plain HTTP client and browser-like headers.
type HTTPFetcher struct {
	client  *http.Client
	headers map[string]string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	headers := make(map[string]string, len(defaultHeaders))
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, headers: headers}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// BrowserFetcher runs the request from inside a headless Chrome tab opened on nba.com,
// for networks where stats.nba.com stalls plain clients.
type BrowserFetcher struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewBrowserFetcher(timeout time.Duration, logger *slog.Logger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BrowserFetcher{timeout: timeout, logger: logger}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(defaultHeaders["User-Agent"]),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		f.logger.Debug(fmt.Sprintf("chromedp: "+format, v...))
	}))
	defer cancel()

	script := fmt.Sprintf(`fetch(%q, {headers: {"Accept": "application/json"}, credentials: "include"})
		.then(r => { if (!r.ok) { throw new Error("status " + r.status); } return r.text(); })`, rawURL)

	var body string
	err := chromedp.Run(ctx,
		chromedp.Navigate(statsPageURL),
		chromedp.Evaluate(script, &body, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp fetch: %w", err)
	}
	return []byte(body), nil
}

// Client reads the league game log from stats.nba.com.
type Client struct {
	baseURL string
	fetcher Fetcher
}

func NewClient(baseURL string, fetcher Fetcher) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), fetcher: fetcher}
}

// LeagueGameLogURL builds the player game log query for one season, newest games first.
func (c *Client) LeagueGameLogURL(season, seasonType string) string {
	q := url.Values{}
	q.Set("Counter", "1000")
	q.Set("DateFrom", "")
	q.Set("DateTo", "")
	q.Set("Direction", "DESC")
	q.Set("ISTRound", "")
	q.Set("LeagueID", "00")
	q.Set("PlayerOrTeam", "P")
	q.Set("Season", season)
	q.Set("SeasonType", seasonType)
	q.Set("Sorter", "DATE")
	return c.baseURL + leagueGameLogAPI + "?" + q.Encode()
}

// FetchLeagueGameLog downloads and decodes one season of player game logs.
func (c *Client) FetchLeagueGameLog(ctx context.Context, season, seasonType string) (*LeagueGameLogResponse, error) {
	body, err := c.fetcher.Fetch(ctx, c.LeagueGameLogURL(season, seasonType))
	if err != nil {
		return nil, fmt.Errorf("fetch leaguegamelog: %w", err)
	}
	var out LeagueGameLogResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode leaguegamelog: %w", err)
	}
	return &out, nil
}

// CurrentSeason returns the season label ("2024-25") that is running, or about to start, at t.
// Seasons are taken to start in October.
func CurrentSeason(t time.Time) string {
	start := t.Year()
	if t.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
