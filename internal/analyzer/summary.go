package analyzer

import (
	"context"
	"time"

	"stockweather/internal/model"
)

// MarketSummary condenses a market-wide analysis into headline numbers.
// SentimentIndex is the share of positive stocks on a 0-100 scale.
type MarketSummary struct {
	SentimentIndex   float64   `json:"sentiment_index"`
	Trend            string    `json:"trend"` // bullish, neutral, bearish
	TotalStocks      int       `json:"total_stocks"`
	PositiveStocks   int       `json:"positive_stocks"`
	NegativeStocks   int       `json:"negative_stocks"`
	NeutralStocks    int       `json:"neutral_stocks"`
	StrongestSectors []string  `json:"strongest_sectors"`
	WeakestSectors   []string  `json:"weakest_sectors"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Summary returns the market summary. A retained full-market result is
// served as-is; otherwise the summary is computed from the current rankings.
func (a *Analyzer) Summary(ctx context.Context) (*MarketSummary, error) {
	a.job.mu.Lock()
	r := a.retainedResult(ctx)
	a.job.mu.Unlock()
	if r != nil {
		s := r.Summary
		return &s, nil
	}

	rows, err := a.marketRows(ctx, model.MarketAll)
	if err != nil {
		return nil, err
	}
	s := computeSummary(rows, sectorize(rows), time.Now())
	return &s, nil
}

// computeSummary derives the headline numbers from ranking rows and the
// sector map. Stocks count as positive above 0.55 and negative below 0.45
// so near-neutral scores don't swing the index.
func computeSummary(rows []model.StockRanking, sectors []model.SectorWeather, now time.Time) MarketSummary {
	s := MarketSummary{
		SentimentIndex: 50,
		Trend:          "neutral",
		TotalStocks:    len(rows),
		UpdatedAt:      now,
	}

	for _, r := range rows {
		switch {
		case r.Probability > 0.55:
			s.PositiveStocks++
		case r.Probability < 0.45:
			s.NegativeStocks++
		default:
			s.NeutralStocks++
		}
	}
	if len(rows) > 0 {
		s.SentimentIndex = float64(s.PositiveStocks) / float64(len(rows)) * 100
	}

	switch {
	case s.SentimentIndex > 60:
		s.Trend = "bullish"
	case s.SentimentIndex < 40:
		s.Trend = "bearish"
	}

	for i := 0; i < len(sectors) && i < 3; i++ {
		s.StrongestSectors = append(s.StrongestSectors, sectors[i].Sector)
	}
	start := len(sectors) - 3
	if start < 0 {
		start = 0
	}
	for _, sec := range sectors[start:] {
		s.WeakestSectors = append(s.WeakestSectors, sec.Sector)
	}

	return s
}
