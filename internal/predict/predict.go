// Package predict scores stocks with a soft-voting ensemble. Registered
// predictors each vote a probability and confidence; the ensemble averages
// the votes and derives an expected return from recent volatility. A stock
// no predictor can score falls back to a neutral outcome.
package predict

import (
	"log/slog"

	"stockweather/internal/indicator"
	"stockweather/internal/model"
)

// Input carries everything a predictor may consult for one stock.
// Technical is nil when the bar history is too short to summarize.
type Input struct {
	Ticker           string
	Sector           string
	Bars             []model.Bar
	Fundamentals     model.Fundamentals
	FundamentalScore float64
	Technical        *indicator.Summary
}

// Result is a single predictor's vote.
type Result struct {
	Probability float64
	Confidence  float64
}

// Outcome is the ensemble's final word on a stock.
type Outcome struct {
	Probability    float64
	ExpectedReturn float64
	Confidence     float64
}

// Fallback is the neutral outcome used when every predictor fails.
var Fallback = Outcome{Probability: 0.5, ExpectedReturn: 0, Confidence: 0.3}

// Predictor votes on a single stock.
type Predictor interface {
	Name() string
	Predict(in Input) (Result, error)
}

// Ensemble soft-votes over its predictors.
type Ensemble struct {
	predictors []Predictor
}

// NewEnsemble builds an ensemble over the given predictors. With none
// given it runs the baseline predictor alone.
func NewEnsemble(predictors ...Predictor) *Ensemble {
	if len(predictors) == 0 {
		predictors = []Predictor{BaselinePredictor{}}
	}
	return &Ensemble{predictors: predictors}
}

// Predict averages the votes of every predictor that produced one. A
// predictor error drops that vote only; zero votes yields the fallback.
func (e *Ensemble) Predict(in Input) Outcome {
	var probSum, confSum float64
	votes := 0
	for _, p := range e.predictors {
		res, err := p.Predict(in)
		if err != nil {
			slog.Debug("predictor skipped", "predictor", p.Name(), "ticker", in.Ticker, "error", err)
			continue
		}
		probSum += res.Probability
		confSum += res.Confidence
		votes++
	}
	if votes == 0 {
		return Fallback
	}

	probability := clamp01(probSum / float64(votes))
	return Outcome{
		Probability:    probability,
		ExpectedReturn: ExpectedReturn(probability, in.Bars),
		Confidence:     clamp01(confSum / float64(votes)),
	}
}

// ExpectedReturn projects a percent return from the trailing 20-day return
// profile, tilted by how far the probability sits from even odds. Histories
// under 20 bars project zero.
func ExpectedReturn(probability float64, bars []model.Bar) float64 {
	if len(bars) < 20 {
		return 0
	}
	closes := make([]float64, 20)
	for i, b := range bars[len(bars)-20:] {
		closes[i] = b.Close
	}
	returns := indicator.DailyReturns(closes)
	avg := indicator.Mean(returns)
	vol := indicator.StdDev(returns)
	return (avg + vol*(probability-0.5)*2) * 100
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
