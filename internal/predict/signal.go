package predict

import (
	"errors"

	"stockweather/internal/rules"
)

// SignalPredictor votes the rules engine's blended score. It abstains when
// no indicator summary could be built for the stock.
type SignalPredictor struct{}

func (SignalPredictor) Name() string { return "rules" }

func (SignalPredictor) Predict(in Input) (Result, error) {
	if in.Technical == nil {
		return Result{}, errors.New("no indicator summary available")
	}
	sig := rules.Generate(in.Technical, in.FundamentalScore)
	return Result{
		Probability: clamp01(sig.Score),
		Confidence:  clamp01(sig.Confidence),
	}, nil
}
