package analyzer

import (
	"context"
	"errors"
	"fmt"

	"stockweather/internal/fetch"
	"stockweather/internal/fundamental"
	"stockweather/internal/indicator"
	"stockweather/internal/model"
	"stockweather/internal/predict"
)

// ErrUnknownTicker reports a ticker outside the universe.
var ErrUnknownTicker = errors.New("unknown ticker")

// historyPoints is the trailing window served on the detail endpoint.
const historyPoints = 120

// Detail builds the extended analytics payload for one ticker: ranking row,
// current price, trailing price history, fundamental breakdown, technical
// snapshot, and (for Korean listings, when enabled) news sentiment.
func (a *Analyzer) Detail(ctx context.Context, ticker string) (*model.DetailedStock, error) {
	e, ok := a.universe.Lookup(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	key := "detail_" + ticker
	var cached model.DetailedStock
	if hit, err := a.cache.Get(ctx, key, &cached); err != nil {
		a.log.Warn("cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	bars, err := a.fetcher.BarsFor(ctx, e, historyDays)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", fetch.ErrNoData, ticker)
	}

	// The quote refines current price and PE; without one the last close
	// and the seeded fundamentals stand.
	f := e.Fundamentals
	current := bars[len(bars)-1].Close
	if q, err := a.fetcher.QuoteFor(ctx, e); err != nil {
		a.log.Debug("quote unavailable", "ticker", ticker, "error", err)
	} else {
		if q.Price > 0 {
			current = q.Price
		}
		if q.HasPE {
			f.PERatio = q.PERatio
			f.HasPE = true
		}
	}

	fscore, breakdown := fundamental.DetailedScore(f, e.Sector)

	tech, err := indicator.Summarize(bars)
	if err != nil {
		a.log.Debug("indicator summary unavailable", "ticker", ticker, "error", err)
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

	snap, err := indicator.Snapshot(bars)
	if err != nil {
		a.log.Debug("technical snapshot unavailable", "ticker", ticker, "error", err)
	}

	start := len(bars) - historyPoints
	if start < 0 {
		start = 0
	}
	history := make([]model.PricePoint, 0, len(bars)-start)
	for _, b := range bars[start:] {
		history = append(history, model.PricePoint{
			Date:   b.Timestamp.Format("2006-01-02"),
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	icon, _ := Weather(out.Probability)
	d := &model.DetailedStock{
		StockRanking: model.StockRanking{
			Ticker:           e.Ticker,
			Name:             e.Name,
			Sector:           e.Sector,
			Probability:      out.Probability,
			ExpectedReturn:   out.ExpectedReturn,
			FundamentalScore: fscore,
			Confidence:       out.Confidence,
			WeatherIcon:      icon,
		},
		CurrentPrice:         current,
		PriceHistory:         history,
		FundamentalBreakdown: breakdown,
		Technical:            snap,
	}

	if a.newsEnabled && e.Listing.Market == model.MarketKR && a.news != nil {
		if s, err := a.news.Sentiment(ctx, e); err != nil {
			a.log.Warn("news sentiment unavailable", "ticker", ticker, "error", err)
		} else {
			d.NewsSentiment = s
		}
	}

	if err := a.cache.Set(ctx, key, d, a.detailTTL); err != nil {
		a.log.Warn("cache write failed", "key", key, "error", err)
	}
	return d, nil
}
