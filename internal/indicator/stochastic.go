package indicator

import "errors"

// Stochastic holds the fast stochastic oscillator values. D mirrors K since
// only the latest bar is evaluated.
type Stochastic struct {
	K          float64
	D          float64
	Oversold   bool
	Overbought bool
}

// CalculateStochastic computes %K over the given lookback period. The range
// collapsing to a point yields a neutral 50.
func CalculateStochastic(highs, lows, closes []float64, period int) (Stochastic, error) {
	if period <= 0 {
		return Stochastic{}, errors.New("period must be positive")
	}
	if len(highs) < period || len(lows) < period || len(closes) < period {
		return Stochastic{}, errors.New("not enough data for stochastic calculation")
	}

	lowest := lows[len(lows)-period]
	highest := highs[len(highs)-period]
	for i := len(lows) - period + 1; i < len(lows); i++ {
		if lows[i] < lowest {
			lowest = lows[i]
		}
	}
	for i := len(highs) - period + 1; i < len(highs); i++ {
		if highs[i] > highest {
			highest = highs[i]
		}
	}

	k := 50.0
	if highest != lowest {
		k = (closes[len(closes)-1] - lowest) / (highest - lowest) * 100
	}
	return Stochastic{
		K:          k,
		D:          k,
		Oversold:   k < 20,
		Overbought: k > 80,
	}, nil
}
