// Package fundamental scores stocks on financial metrics. Each metric is
// normalized to [0,1] and blended with per-sector weights; missing metrics
// read as neutral so a stock with no financials lands exactly on 0.5.
package fundamental

import (
	"math"

	"stockweather/internal/model"
)

// Weights splits the composite across the three metrics. They sum to 1.
type Weights struct {
	ROE     float64
	EPS     float64
	Revenue float64
}

var defaultWeights = Weights{ROE: 0.40, EPS: 0.30, Revenue: 0.30}

// Sector overrides. Growth-heavy sectors discount ROE, finance leans on it.
var sectorWeights = map[string]Weights{
	"IT":            {ROE: 0.30, EPS: 0.40, Revenue: 0.30},
	"Manufacturing": {ROE: 0.35, EPS: 0.25, Revenue: 0.40},
	"Finance":       {ROE: 0.50, EPS: 0.30, Revenue: 0.20},
	"Bio":           {ROE: 0.20, EPS: 0.40, Revenue: 0.40},
	"Consumer":      {ROE: 0.35, EPS: 0.35, Revenue: 0.30},
}

// WeightsFor returns the weight set for a sector, falling back to the
// default split for unknown sectors.
func WeightsFor(sector string) Weights {
	if w, ok := sectorWeights[sector]; ok {
		return w
	}
	return defaultWeights
}

// Score computes the composite fundamental score in [0,1], rounded to four
// decimals.
func Score(f model.Fundamentals, sector string) float64 {
	w := WeightsFor(sector)
	score := w.ROE*normalizedROE(f) + w.EPS*normalizedEPS(f) + w.Revenue*normalizedRevenue(f)
	return round4(score)
}

// DetailedScore computes the composite score along with the per-metric
// breakdown served on the detail endpoint.
func DetailedScore(f model.Fundamentals, sector string) (float64, map[string]model.MetricBreakdown) {
	w := WeightsFor(sector)
	breakdown := map[string]model.MetricBreakdown{
		"ROE":         metricBreakdown(f.ROE, f.HasROE, normalizedROE(f), w.ROE),
		"EPS_YoY":     metricBreakdown(f.EPSYoY, f.HasEPS, normalizedEPS(f), w.EPS),
		"Revenue_YoY": metricBreakdown(f.RevenueYoY, f.HasRevenue, normalizedRevenue(f), w.Revenue),
	}
	total := 0.0
	for _, b := range breakdown {
		total += b.Contribution
	}
	return round4(total), breakdown
}

func metricBreakdown(raw float64, present bool, normalized, weight float64) model.MetricBreakdown {
	if !present {
		raw = 0
	}
	return model.MetricBreakdown{
		RawValue:     raw,
		Normalized:   normalized,
		Weight:       weight,
		Contribution: weight * normalized,
	}
}

// normalizedROE maps ROE percent onto [0,1] over the 0~30% band.
func normalizedROE(f model.Fundamentals) float64 {
	if !f.HasROE {
		return 0.5
	}
	switch {
	case f.ROE < 0:
		return 0
	case f.ROE > 30:
		return 1
	default:
		return f.ROE / 30
	}
}

// normalizedEPS maps EPS growth percent onto [0,1] over the -50~+100% band.
func normalizedEPS(f model.Fundamentals) float64 {
	if !f.HasEPS {
		return 0.5
	}
	switch {
	case f.EPSYoY < -50:
		return 0
	case f.EPSYoY > 100:
		return 1
	default:
		return (f.EPSYoY + 50) / 150
	}
}

// normalizedRevenue maps revenue growth percent onto [0,1] over the
// -30~+50% band.
func normalizedRevenue(f model.Fundamentals) float64 {
	if !f.HasRevenue {
		return 0.5
	}
	switch {
	case f.RevenueYoY < -30:
		return 0
	case f.RevenueYoY > 50:
		return 1
	default:
		return (f.RevenueYoY + 30) / 80
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
