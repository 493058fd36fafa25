// Package model defines the core data types shared across the stockweather
// service and clients: ranking snapshots, per-stock detail, sector weather,
// and the market enum.
package model

import (
	"fmt"
	"time"
)

// Market selects which exchange universe a request covers.
type Market string

const (
	MarketAll Market = "ALL"
	MarketKR  Market = "KR"
	MarketUS  Market = "US"
)

// ParseMarket validates a market query value. Empty means ALL.
func ParseMarket(s string) (Market, error) {
	switch Market(s) {
	case "":
		return MarketAll, nil
	case MarketAll, MarketKR, MarketUS:
		return Market(s), nil
	default:
		return "", fmt.Errorf("unknown market %q", s)
	}
}

// Bar is a single daily OHLCV candlestick.
type Bar struct {
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Validate checks bar price consistency.
func (b Bar) Validate() error {
	if b.High < b.Low {
		return fmt.Errorf("bar %s@%s: high %.4f below low %.4f", b.Ticker, b.Timestamp.Format("2006-01-02"), b.High, b.Low)
	}
	return nil
}

// Fundamentals holds the raw financial metrics a stock is scored on. The Has
// flags mark which metrics were actually sourced; the scorer treats unset
// ones as neutral. PE feeds the prediction features only, never the score.
type Fundamentals struct {
	ROE        float64 `json:"roe"`         // return on equity, percent
	EPSYoY     float64 `json:"eps_yoy"`     // EPS growth year over year, percent
	RevenueYoY float64 `json:"revenue_yoy"` // revenue growth year over year, percent
	PERatio    float64 `json:"pe_ratio"`
	HasROE     bool    `json:"-"`
	HasEPS     bool    `json:"-"`
	HasRevenue bool    `json:"-"`
	HasPE      bool    `json:"-"`
}

// StockRanking is one row of a rankings response. It is an immutable
// snapshot: a refresh replaces the whole slice, never individual fields.
type StockRanking struct {
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name"`
	Sector           string  `json:"sector"`
	Probability      float64 `json:"probability"`       // rise probability in [0,1]
	ExpectedReturn   float64 `json:"expected_return"`   // percent, signed
	FundamentalScore float64 `json:"fundamental_score"` // [0,1]
	Confidence       float64 `json:"confidence"`        // [0,1]
	WeatherIcon      string  `json:"weather_icon"`
}

// RankingsData is the full rankings payload. Gainers are ordered by
// probability descending, losers ascending.
type RankingsData struct {
	TopGainers []StockRanking `json:"top_gainers"`
	TopLosers  []StockRanking `json:"top_losers"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PricePoint is one entry of a detail price history series.
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MetricBreakdown explains one metric's contribution to the fundamental score.
type MetricBreakdown struct {
	RawValue     float64 `json:"raw_value"`
	Normalized   float64 `json:"normalized"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// TechnicalSnapshot is the compact indicator block of a detail response.
// The 52-week band covers whatever history the upstream returned when the
// full year is not available.
type TechnicalSnapshot struct {
	MA20           float64 `json:"ma20"`
	MA60           float64 `json:"ma60"`
	RSI            float64 `json:"rsi"`
	Volatility     float64 `json:"volatility"` // annualized, percent
	Week52High     float64 `json:"week52_high"`
	Week52Low      float64 `json:"week52_low"`
	Week52Position float64 `json:"week52_position"` // [0,1] within the band
}

// NewsSentiment summarizes keyword sentiment over recent headlines.
type NewsSentiment struct {
	Score        float64 `json:"score"`
	Label        string  `json:"label"` // positive, negative, neutral
	ArticleCount int     `json:"article_count"`
}

// DetailedStock is the per-ticker detail payload: a StockRanking superset
// with price history, score breakdown, and indicators.
type DetailedStock struct {
	StockRanking
	CurrentPrice         float64                    `json:"current_price"`
	PriceHistory         []PricePoint               `json:"price_history"`
	FundamentalBreakdown map[string]MetricBreakdown `json:"fundamental_breakdown"`
	Technical            TechnicalSnapshot          `json:"technical_indicators"`
	NewsSentiment        *NewsSentiment             `json:"news_sentiment,omitempty"`
}

// SectorWeather is one sector's aggregate forecast.
type SectorWeather struct {
	Sector      string  `json:"sector"`
	Probability float64 `json:"probability"` // mean over the sector's stocks
	WeatherIcon string  `json:"weather_icon"`
	Description string  `json:"description"`
	StockCount  int     `json:"stock_count"`
	TopStock    string  `json:"top_stock"`
}

// Listing is a universe entry: the static identity of a tradable stock.
type Listing struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Market Market `json:"market"`
}

// Prediction is one stored per-ticker outcome of a full-market run,
// persisted to daily snapshot files.
type Prediction struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	Ticker           string  `json:"ticker"`
	Market           string  `json:"market"`
	Probability      float64 `json:"probability"`
	ExpectedReturn   float64 `json:"expected_return"`
	FundamentalScore float64 `json:"fundamental_score"`
	Confidence       float64 `json:"confidence"`
}
