package stockweather

import "time"

// Market selects which exchange universe a request covers.
type Market string

const (
	MarketAll Market = "ALL"
	MarketKR  Market = "KR"
	MarketUS  Market = "US"
)

// Ranking is one stock's forecast row.
type Ranking struct {
	Ticker           string  `json:"ticker"`
	Name             string  `json:"name"`
	Sector           string  `json:"sector"`
	Probability      float64 `json:"probability"`
	ExpectedReturn   float64 `json:"expected_return"`
	FundamentalScore float64 `json:"fundamental_score"`
	Confidence       float64 `json:"confidence"`
	WeatherIcon      string  `json:"weather_icon"`
}

// Rankings is the full rankings payload. Gainers are ordered by probability
// descending, losers ascending.
type Rankings struct {
	TopGainers []Ranking `json:"top_gainers"`
	TopLosers  []Ranking `json:"top_losers"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PricePoint is one entry of a detail price history series.
type PricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MetricBreakdown explains one metric's contribution to the fundamental
// score.
type MetricBreakdown struct {
	RawValue     float64 `json:"raw_value"`
	Normalized   float64 `json:"normalized"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// TechnicalIndicators is the compact indicator block of a detail response.
type TechnicalIndicators struct {
	MA20           float64 `json:"ma20"`
	MA60           float64 `json:"ma60"`
	RSI            float64 `json:"rsi"`
	Volatility     float64 `json:"volatility"`
	Week52High     float64 `json:"week52_high"`
	Week52Low      float64 `json:"week52_low"`
	Week52Position float64 `json:"week52_position"`
}

// NewsSentiment summarizes keyword sentiment over recent headlines.
type NewsSentiment struct {
	Score        float64 `json:"score"`
	Label        string  `json:"label"`
	ArticleCount int     `json:"article_count"`
}

// StockDetail is the per-ticker detail payload.
type StockDetail struct {
	Ranking
	CurrentPrice         float64                    `json:"current_price"`
	PriceHistory         []PricePoint               `json:"price_history"`
	FundamentalBreakdown map[string]MetricBreakdown `json:"fundamental_breakdown"`
	Technical            TechnicalIndicators        `json:"technical_indicators"`
	NewsSentiment        *NewsSentiment             `json:"news_sentiment,omitempty"`
}

// SectorWeather is one sector's aggregate forecast.
type SectorWeather struct {
	Sector      string  `json:"sector"`
	Probability float64 `json:"probability"`
	WeatherIcon string  `json:"weather_icon"`
	Description string  `json:"description"`
	StockCount  int     `json:"stock_count"`
	TopStock    string  `json:"top_stock"`
}

// Listing is one universe entry.
type Listing struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Market Market `json:"market"`
}

// Health reports server liveness.
type Health struct {
	Status  string   `json:"status"`
	Cache   bool     `json:"cache"`
	Sources []string `json:"sources"`
	Stocks  int      `json:"stocks"`
	Uptime  string   `json:"uptime"`
}

// MarketSummary is the market-wide sentiment report.
type MarketSummary struct {
	SentimentIndex   float64   `json:"sentiment_index"`
	Trend            string    `json:"trend"`
	TotalStocks      int       `json:"total_stocks"`
	PositiveStocks   int       `json:"positive_stocks"`
	NegativeStocks   int       `json:"negative_stocks"`
	NeutralStocks    int       `json:"neutral_stocks"`
	StrongestSectors []string  `json:"strongest_sectors"`
	WeakestSectors   []string  `json:"weakest_sectors"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// JobStatus reports the full-market analysis job state.
type JobStatus struct {
	Status          string     `json:"status"` // idle, in_progress, completed
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	AnalyzedCount   int        `json:"analyzed_count,omitempty"`
}

// FullResult is a completed full-market analysis.
type FullResult struct {
	AnalyzedCount int             `json:"analyzed_count"`
	Rankings      Rankings        `json:"rankings"`
	Sectors       []SectorWeather `json:"sectors"`
	Summary       MarketSummary   `json:"market_summary"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// CacheInfo annotates a full-market result served from retention.
type CacheInfo struct {
	Cached       bool `json:"cached"`
	AgeSeconds   int  `json:"age_seconds"`
	NextUpdateIn int  `json:"next_update_in"`
}

// AnalyzeResult reports how the server handled a full-analysis trigger.
// Status is started or in_progress for a 202, cached when a retained result
// came back, in which case Result and CacheInfo are set.
type AnalyzeResult struct {
	Status    string
	Message   string
	CheckURL  string
	Result    *FullResult
	CacheInfo *CacheInfo
}
