package predict

import (
	"stockweather/internal/indicator"
	"stockweather/internal/model"
)

// BaselinePredictor is the always-available vote: momentum over the last
// five sessions plus the mean of the normalized fundamental features, at
// low confidence.
type BaselinePredictor struct{}

func (BaselinePredictor) Name() string { return "baseline" }

func (BaselinePredictor) Predict(in Input) (Result, error) {
	probability := clamp01(0.5 + recentReturn(in.Bars)*2 + fundamentalMean(in)*0.3)
	return Result{Probability: probability, Confidence: 0.3}, nil
}

// recentReturn is the mean daily return over the last five sessions, zero
// when fewer than 120 bars are available.
func recentReturn(bars []model.Bar) float64 {
	if len(bars) < 120 {
		return 0
	}
	closes := make([]float64, 120)
	for i, b := range bars[len(bars)-120:] {
		closes[i] = b.Close
	}
	returns := indicator.DailyReturns(closes)
	return indicator.Mean(returns[len(returns)-5:])
}

// fundamentalMean averages PE, ROE, EPS growth, and revenue growth, each
// normalized, substituting neutral defaults for missing metrics.
func fundamentalMean(in Input) float64 {
	f := in.Fundamentals
	pe := valueOr(f.PERatio, f.HasPE, 15) / 30
	roe := valueOr(f.ROE, f.HasROE, 10) / 30
	eps := valueOr(f.EPSYoY, f.HasEPS, 0) / 100
	rev := valueOr(f.RevenueYoY, f.HasRevenue, 0) / 100
	return (pe + roe + eps + rev) / 4
}

func valueOr(v float64, present bool, fallback float64) float64 {
	if present {
		return v
	}
	return fallback
}
