// Package fetch loads market data from upstream providers. The Yahoo chart
// API covers every listing; Alpaca serves US daily bars when credentials are
// configured. A Router picks the source per universe entry.
package fetch

import (
	"context"
	"errors"

	"stockweather/internal/model"
)

// ErrNoData reports that the upstream answered but had nothing for the
// symbol, typically a delisted or unknown ticker.
var ErrNoData = errors.New("no data for symbol")

// BarFetcher loads daily OHLCV history for one symbol, newest bar last.
type BarFetcher interface {
	Name() string
	DailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
}

// QuoteFetcher loads a spot quote for one symbol.
type QuoteFetcher interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// Quote is a spot quote with the valuation fields the analyzer consumes.
// HasPE marks whether the upstream carried enough to derive a PE ratio.
type Quote struct {
	Symbol    string
	Name      string
	Price     float64
	PrevClose float64
	Volume    int64
	MarketCap int64
	PERatio   float64
	HasPE     bool
}
