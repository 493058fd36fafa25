package fetch

import (
	"context"
	"log/slog"

	"stockweather/internal/model"
	"stockweather/internal/universe"
)

// Router picks the upstream per universe entry. US listings go to Alpaca
// when it is configured, with the Yahoo chart API as universal fallback.
// Returned bars always carry the entry's canonical ticker regardless of the
// symbol the upstream was queried with.
type Router struct {
	yahoo  BarFetcher
	alpaca BarFetcher // nil without credentials
	quotes QuoteFetcher
	log    *slog.Logger
}

// NewRouter creates a Router. alpaca may be nil; yahoo and quotes are
// usually the same YahooFetcher.
func NewRouter(yahoo BarFetcher, alpaca BarFetcher, quotes QuoteFetcher) *Router {
	return &Router{
		yahoo:  yahoo,
		alpaca: alpaca,
		quotes: quotes,
		log:    slog.Default().With("component", "fetch-router"),
	}
}

// BarsFor fetches up to days daily bars for the given universe entry.
func (r *Router) BarsFor(ctx context.Context, e universe.Entry, days int) ([]model.Bar, error) {
	if e.Market == model.MarketUS && r.alpaca != nil {
		bars, err := r.alpaca.DailyBars(ctx, e.Ticker, days)
		if err == nil {
			return rebrand(bars, e.Ticker), nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		r.log.Warn("falling back to yahoo", "ticker", e.Ticker, "error", err)
	}

	bars, err := r.yahoo.DailyBars(ctx, e.YahooSymbol, days)
	if err != nil {
		return nil, err
	}
	return rebrand(bars, e.Ticker), nil
}

// QuoteFor fetches a spot quote for the given universe entry.
func (r *Router) QuoteFor(ctx context.Context, e universe.Entry) (*Quote, error) {
	q, err := r.quotes.Quote(ctx, e.YahooSymbol)
	if err != nil {
		return nil, err
	}
	q.Symbol = e.Ticker
	return q, nil
}

// rebrand stamps the canonical ticker onto bars fetched under an upstream
// symbol such as 005930.KS.
func rebrand(bars []model.Bar, ticker string) []model.Bar {
	for i := range bars {
		bars[i].Ticker = ticker
	}
	return bars
}
