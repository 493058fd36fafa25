package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stockweather/internal/model"
)

var _ BarFetcher = (*AlpacaFetcher)(nil)

// AlpacaFetcher loads US daily bars from the Alpaca market-data API.
type AlpacaFetcher struct {
	client *marketdata.Client
	log    *slog.Logger
}

// NewAlpacaFetcher creates an AlpacaFetcher with the given credentials.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaFetcher{
		client: marketdata.NewClient(opts),
		log:    slog.Default().With("fetcher", "alpaca"),
	}
}

// Name returns the fetcher identifier.
func (f *AlpacaFetcher) Name() string { return "alpaca" }

// DailyBars fetches up to days daily bars for symbol, oldest first. The
// start is padded past the trading-day count to absorb weekends and
// holidays; the end stops at yesterday because recent SIP data needs a paid
// feed.
func (f *AlpacaFetcher) DailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	alpacaBars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     now.AddDate(0, 0, -(days*3/2 + 10)),
		End:       now.AddDate(0, 0, -1),
		Feed:      "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(alpacaBars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	bars := make([]model.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, model.Bar{
			Ticker:    strings.ToUpper(symbol),
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	f.log.Debug("bars fetched", "symbol", symbol, "bars", len(bars))
	return bars, nil
}
