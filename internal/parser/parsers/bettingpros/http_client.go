package bettingpros

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/nbaprops/internal/pkg/models"
)

const defaultBaseURL = "https://api.bettingpros.com"

const (
	endpointEvents = "/v3/events"
	endpointOffers = "/v3/offers"
)

// defaultHeaders mimic a browser session; the API rejects bare clients.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.5",
	"Sec-GPC":         "1",
	"Sec-Fetch-Dest":  "empty",
	"Sec-Fetch-Mode":  "cors",
	"Sec-Fetch-Site":  "same-site",
	"Pragma":          "no-cache",
	"Cache-Control":   "no-cache",
}

// FetchError is returned for any failed request: transport error, non-2xx status or undecodable body.
type FetchError struct {
	Endpoint string
	Status   int // 0 when no response was received
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Client struct {
	baseURL string
	apiKey  string
	sport   string
	headers map[string]string
	client  *http.Client
}

// NewClient builds a client. extra headers override the defaults, userAgent (if set) overrides both.
func NewClient(baseURL, apiKey, sport string, timeout time.Duration, userAgent string, extra map[string]string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if sport == "" {
		sport = "NBA"
	}
	headers := make(map[string]string, len(defaultHeaders)+len(extra)+1)
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		sport:   sport,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchEvents returns the day's games keyed by event id.
// GET /v3/events?sport=NBA&date=2024-12-10
func (c *Client) FetchEvents(ctx context.Context, date string) (models.EventTeams, error) {
	q := url.Values{}
	q.Set("sport", c.sport)
	q.Set("date", date)

	var out EventsResponse
	if err := c.getJSON(ctx, endpointEvents, q, &out); err != nil {
		return nil, err
	}

	events := make(models.EventTeams, len(out.Events))
	for _, ev := range out.Events {
		events[ev.ID] = models.Event{
			ID:   ev.ID,
			Home: orDefault(ev.Home, models.UnknownValue),
			Away: orDefault(ev.Visitor, models.UnknownValue),
		}
	}
	return events, nil
}

// OffersQuery selects one page of offers for one market across a set of events.
type OffersQuery struct {
	EventIDs []int64
	MarketID int
	Location string
	Page     int
	Limit    int
}

func (q OffersQuery) values(sport string) url.Values {
	ids := make([]string, len(q.EventIDs))
	for i, id := range q.EventIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	v := url.Values{}
	v.Set("sport", sport)
	v.Set("market_id", strconv.Itoa(q.MarketID))
	v.Set("event_id", strings.Join(ids, ":"))
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("page", strconv.Itoa(page))
	return v
}

// FetchOffers returns one page of offers.
// GET /v3/offers?sport=NBA&market_id=156&event_id=1:2:3&location=OH&limit=100&page=1
func (c *Client) FetchOffers(ctx context.Context, q OffersQuery) (*OffersResponse, error) {
	var out OffersResponse
	if err := c.getJSON(ctx, endpointOffers, q.values(c.sport), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAllOffers walks pages starting at q.Page until maxPages pages were read
// or a page comes back shorter than q.Limit.
func (c *Client) FetchAllOffers(ctx context.Context, q OffersQuery, maxPages int) (*OffersResponse, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	all := &OffersResponse{}
	for i := 0; i < maxPages; i++ {
		page, err := c.FetchOffers(ctx, q)
		if err != nil {
			return nil, err
		}
		all.Offers = append(all.Offers, page.Offers...)
		if q.Limit <= 0 || len(page.Offers) < q.Limit {
			break
		}
		q.Page++
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, dst any) error {
	body, err := c.get(ctx, endpoint, c.baseURL+endpoint+"?"+q.Encode())
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return &FetchError{Endpoint: endpoint, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("new request: %w", err)}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("do request: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		return nil, &FetchError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}
	return resp.Body, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
