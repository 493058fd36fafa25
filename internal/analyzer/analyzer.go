// Package analyzer runs the prediction pipeline over the stock universe and
// assembles the payloads the HTTP API serves: probability rankings, per-stock
// detail, sector weather, and the full-market analysis job. Results are
// cached in the TTL store so repeated requests within a window never touch
// the upstream data providers.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stockweather/internal/fetch"
	"stockweather/internal/fundamental"
	"stockweather/internal/indicator"
	"stockweather/internal/model"
	"stockweather/internal/news"
	"stockweather/internal/predict"
	"stockweather/internal/store"
	"stockweather/internal/universe"
)

// historyDays is the bar history requested per ticker. A year of sessions
// covers the 52-week range and every indicator window.
const historyDays = 252

// Fetcher supplies bar history and spot quotes for universe entries.
type Fetcher interface {
	BarsFor(ctx context.Context, e universe.Entry, days int) ([]model.Bar, error)
	QuoteFor(ctx context.Context, e universe.Entry) (*fetch.Quote, error)
}

// SentimentSource scores recent news coverage for a listing.
type SentimentSource interface {
	Sentiment(ctx context.Context, e universe.Entry) (*model.NewsSentiment, error)
}

var (
	_ Fetcher         = (*fetch.Router)(nil)
	_ SentimentSource = (*news.Analyzer)(nil)
)

// Options wires an Analyzer. Zero TTLs and worker counts fall back to the
// service defaults.
type Options struct {
	Fetcher     Fetcher
	Cache       *store.Cache
	Snapshots   *store.SnapshotStore
	Universe    *universe.Universe
	News        SentimentSource // optional
	NewsEnabled bool
	Workers     int
	RankingsTTL time.Duration
	DetailTTL   time.Duration
	FullTTL     time.Duration
}

// Analyzer owns the analysis pipeline and the full-market job state.
type Analyzer struct {
	fetcher     Fetcher
	cache       *store.Cache
	snapshots   *store.SnapshotStore
	universe    *universe.Universe
	news        SentimentSource
	newsEnabled bool
	ensemble    *predict.Ensemble
	workers     int
	rankingsTTL time.Duration
	detailTTL   time.Duration
	fullTTL     time.Duration
	job         fullJob
	log         *slog.Logger
}

// New builds an Analyzer over the given collaborators.
func New(opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = 32
	}
	if opts.RankingsTTL <= 0 {
		opts.RankingsTTL = time.Hour
	}
	if opts.DetailTTL <= 0 {
		opts.DetailTTL = time.Hour
	}
	if opts.FullTTL <= 0 {
		opts.FullTTL = 3 * time.Hour
	}
	return &Analyzer{
		fetcher:     opts.Fetcher,
		cache:       opts.Cache,
		snapshots:   opts.Snapshots,
		universe:    opts.Universe,
		news:        opts.News,
		newsEnabled: opts.NewsEnabled,
		ensemble:    predict.NewEnsemble(predict.BaselinePredictor{}, predict.SignalPredictor{}),
		workers:     opts.Workers,
		rankingsTTL: opts.RankingsTTL,
		detailTTL:   opts.DetailTTL,
		fullTTL:     opts.FullTTL,
		log:         slog.Default().With("component", "analyzer"),
	}
}

// Universe returns the universe the analyzer works over.
func (a *Analyzer) Universe() *universe.Universe { return a.universe }

func rowsKey(m model.Market) string {
	return "analysis_" + string(m)
}

func rankingsKey(m model.Market, limit int) string {
	return fmt.Sprintf("rankings_%s_%d", m, limit)
}

// marketRows returns every ranking row for a market, sorted by probability
// descending, serving from the cache when a fresh analysis exists.
func (a *Analyzer) marketRows(ctx context.Context, m model.Market) ([]model.StockRanking, error) {
	key := rowsKey(m)
	var cached []model.StockRanking
	if hit, err := a.cache.Get(ctx, key, &cached); err != nil {
		a.log.Warn("cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	rows, err := a.fanOut(ctx, a.universe.Market(m))
	if err != nil {
		return nil, err
	}
	if err := a.cache.Set(ctx, key, rows, a.rankingsTTL); err != nil {
		a.log.Warn("cache write failed", "key", key, "error", err)
	}
	return rows, nil
}

// fanOut analyzes every entry concurrently under a bounded worker pool.
// A ticker whose analysis fails degrades to the neutral fallback row; only
// context cancellation fails the whole group.
func (a *Analyzer) fanOut(ctx context.Context, entries []universe.Entry) ([]model.StockRanking, error) {
	results := make([]model.StockRanking, len(entries))
	sem := make(chan struct{}, a.workers)

	g, gctx := errgroup.WithContext(ctx)

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			row, err := a.analyzeOne(gctx, e)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.log.Warn("analysis degraded to fallback", "ticker", e.Ticker, "error", err)
				row = a.fallbackRow(e)
			}
			results[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
	return results, nil
}

// analyzeOne runs the full pipeline for one entry: bars, indicators,
// fundamental score, ensemble prediction.
func (a *Analyzer) analyzeOne(ctx context.Context, e universe.Entry) (model.StockRanking, error) {
	bars, err := a.fetcher.BarsFor(ctx, e, historyDays)
	if err != nil {
		return model.StockRanking{}, err
	}
	if len(bars) == 0 {
		return model.StockRanking{}, fmt.Errorf("%w: %s", fetch.ErrNoData, e.Ticker)
	}
	return a.score(e, bars, e.Fundamentals), nil
}

// score turns a bar history into a ranking row. A history too short to
// summarize still gets a baseline prediction, just without the rules vote.
func (a *Analyzer) score(e universe.Entry, bars []model.Bar, f model.Fundamentals) model.StockRanking {
	fscore := fundamental.Score(f, e.Sector)

	tech, err := indicator.Summarize(bars)
	if err != nil {
		a.log.Debug("indicator summary unavailable", "ticker", e.Ticker, "error", err)
		tech = nil
	}

	out := a.ensemble.Predict(predict.Input{
		Ticker:           e.Ticker,
		Sector:           e.Sector,
		Bars:             bars,
		Fundamentals:     f,
		FundamentalScore: fscore,
		Technical:        tech,
	})

	icon, _ := Weather(out.Probability)
	return model.StockRanking{
		Ticker:           e.Ticker,
		Name:             e.Name,
		Sector:           e.Sector,
		Probability:      out.Probability,
		ExpectedReturn:   out.ExpectedReturn,
		FundamentalScore: fscore,
		Confidence:       out.Confidence,
		WeatherIcon:      icon,
	}
}

// fallbackRow is the neutral row served when a ticker's data cannot be
// fetched. The fundamental score still reflects the seeded financials.
func (a *Analyzer) fallbackRow(e universe.Entry) model.StockRanking {
	icon, _ := Weather(predict.Fallback.Probability)
	return model.StockRanking{
		Ticker:           e.Ticker,
		Name:             e.Name,
		Sector:           e.Sector,
		Probability:      predict.Fallback.Probability,
		ExpectedReturn:   predict.Fallback.ExpectedReturn,
		FundamentalScore: fundamental.Score(e.Fundamentals, e.Sector),
		Confidence:       predict.Fallback.Confidence,
		WeatherIcon:      icon,
	}
}
