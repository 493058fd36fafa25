package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stockweather/internal/model"
	"stockweather/internal/util"
)

var _ BarFetcher = (*YahooFetcher)(nil)
var _ QuoteFetcher = (*YahooFetcher)(nil)

const defaultChartURL = "https://query1.finance.yahoo.com"

// YahooFetcher loads daily bars from the Yahoo Finance chart API. Korean
// listings use their .KS/.KQ suffixed symbols; US listings their plain
// tickers. All requests share one rate limiter per fetcher.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string

	limiter    *util.RateLimiter
	attempts   int
	retryDelay time.Duration
	log        *slog.Logger
}

// NewYahooFetcher creates a YahooFetcher capped at perMinute requests per
// minute, retrying transient failures up to attempts times.
func NewYahooFetcher(perMinute, attempts int, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		Client:     &http.Client{Timeout: timeout},
		BaseURL:    defaultChartURL,
		limiter:    util.NewRateLimiter(perMinute),
		attempts:   attempts,
		retryDelay: 500 * time.Millisecond,
		log:        slog.Default().With("fetcher", "yahoo"),
	}
}

// Name returns the fetcher identifier.
func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the chart API response envelope.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// DailyBars fetches up to days daily bars for symbol, oldest first.
func (f *YahooFetcher) DailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	bars, err := f.fetchChart(ctx, symbol, "1d", rangeFor(days))
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// rangeFor maps a requested day count onto the chart API's range ladder.
// "2y" is the widest range the daily interval supports.
func rangeFor(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.Bar, error) {
	var bars []model.Bar
	err := util.Retry(ctx, f.attempts, f.retryDelay, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}
		var err error
		bars, err = f.fetchChartOnce(ctx, symbol, interval, rng)
		return err
	})
	if err != nil {
		return nil, err
	}
	f.log.Debug("chart fetched", "symbol", symbol, "range", rng, "bars", len(bars))
	return bars, nil
}

func (f *YahooFetcher) fetchChartOnce(ctx context.Context, symbol, interval, rng string) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, util.Permanent(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, util.Permanent(fmt.Errorf("%w: %s", ErrNoData, symbol))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, util.Permanent(fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, util.Permanent(fmt.Errorf("%w: %s", ErrNoData, symbol))
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars on holidays
		}
		bars = append(bars, model.Bar{
			Ticker:    symbol,
			Timestamp: time.Unix(ts, 0),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
