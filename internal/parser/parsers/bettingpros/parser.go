package bettingpros

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/nbaprops/internal/parser/parsers"
	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/enums"
	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
	"github.com/Vodeneev/nbaprops/internal/pkg/models"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

const sourceName = "BettingPros"

// OffersSource is the slice of Client the pipeline depends on.
type OffersSource interface {
	FetchEvents(ctx context.Context, date string) (models.EventTeams, error)
	FetchAllOffers(ctx context.Context, q OffersQuery, maxPages int) (*OffersResponse, error)
}

// PropsStore persists normalized rows, one table per market.
type PropsStore = interfaces.PropsStore

func init() {
	parsers.Register(sourceName, func(cfg *config.Config, store interfaces.PropsStore, logger *slog.Logger) (interfaces.Parser, error) {
		return NewParser(cfg, store, logger)
	})
}

// Parser runs the ingestion pipeline: events, then every configured market in order.
type Parser struct {
	cfg     config.BettingProsConfig
	source  OffersSource
	store   PropsStore
	markets []enums.Market
	logger  *slog.Logger
	now     func() time.Time
}

func NewParser(cfg *config.Config, store PropsStore, logger *slog.Logger) (*Parser, error) {
	bp := cfg.Parser.BettingPros
	client := NewClient(bp.BaseURL, bp.APIKey, bp.Sport, cfg.Parser.Timeout, cfg.Parser.UserAgent, cfg.Parser.Headers)
	return newParser(bp, client, store, logger, time.Now)
}

func newParser(cfg config.BettingProsConfig, source OffersSource, store PropsStore, logger *slog.Logger, now func() time.Time) (*Parser, error) {
	markets, err := enums.ParseMarkets(cfg.Markets)
	if err != nil {
		return nil, fmt.Errorf("bettingpros markets: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		cfg:     cfg,
		source:  source,
		store:   store,
		markets: markets,
		logger:  logger.With("parser", sourceName),
		now:     now,
	}, nil
}

func (p *Parser) GetName() string {
	return sourceName
}

// ParseOnce ingests today's slate. Failing to fetch events fails the run; a failing
// market is recorded in the report and the remaining markets still run.
func (p *Parser) ParseOnce(ctx context.Context) (*performance.RunReport, error) {
	start := p.now()
	fetchedAt := models.FormatFetchTime(start)
	report := performance.NewRunReport(uuid.NewString(), fetchedAt, start)
	logger := p.logger.With("run_id", report.RunID)

	date := start.Format("2006-01-02")
	logger.Info("fetching events", "date", date)
	events, err := p.source.FetchEvents(ctx, date)
	if err != nil {
		err = fmt.Errorf("fetch events: %w", err)
		report.Finish(p.now(), err)
		return report, err
	}
	report.Events = len(events)
	if len(events) == 0 {
		logger.Warn("no events found for date", "date", date)
		report.Finish(p.now(), nil)
		return report, nil
	}
	logger.Info("fetched events", "count", len(events))

	for _, market := range p.markets {
		if err := ctx.Err(); err != nil {
			report.Finish(p.now(), err)
			return report, err
		}
		report.AddMarket(p.processMarket(ctx, logger, market, events, fetchedAt))
	}

	report.Finish(p.now(), nil)
	report.Log(logger)
	return report, nil
}

func (p *Parser) processMarket(ctx context.Context, logger *slog.Logger, market enums.Market, events models.EventTeams, fetchedAt string) performance.MarketResult {
	start := time.Now()
	res := performance.MarketResult{
		MarketID: int(market),
		Market:   market.Name(),
		Table:    market.TableName(),
	}
	logger = logger.With("market", res.Market, "market_id", res.MarketID)
	fail := func(stage string, err error) performance.MarketResult {
		res.Error = fmt.Sprintf("%s: %v", stage, err)
		res.Duration = time.Since(start)
		logger.Error("market skipped", "stage", stage, "error", err)
		return res
	}

	resp, err := p.source.FetchAllOffers(ctx, OffersQuery{
		EventIDs: events.IDs(),
		MarketID: int(market),
		Location: p.cfg.Location,
		Page:     1,
		Limit:    p.cfg.Limit,
	}, p.cfg.MaxPages)
	if err != nil {
		return fail("fetch offers", err)
	}
	res.Offers = len(resp.Offers)

	rows := Normalize(resp, events, res.Market, fetchedAt, NormalizeOptions{
		IncludeConsensus: p.cfg.ConsensusBook == config.ConsensusInclude,
		Logger:           logger,
	})
	summary := Summarize(rows)
	res.Rows = summary.Rows
	res.Players = summary.Players
	res.Bookmakers = summary.Bookmakers
	logger.Info("parsed offers", "offers", res.Offers, "rows", res.Rows, "unique_players", res.Players)

	if err := p.store.EnsureSchema(ctx, res.Table); err != nil {
		return fail("ensure schema", err)
	}
	inserted, err := p.store.UpsertRows(ctx, res.Table, rows)
	if err != nil {
		return fail("store rows", err)
	}
	res.Inserted = inserted
	res.Duration = time.Since(start)
	logger.Info("stored rows", "table", res.Table, "inserted", inserted, "ignored", int64(len(rows))-inserted)
	return res
}
