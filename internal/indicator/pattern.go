package indicator

import "errors"

// Patterns flags chart formations read off the close series. Cross and order
// flags stay false when the history is too short for the longer averages.
type Patterns struct {
	GoldenCross     bool
	DeathCross      bool
	PerfectOrder    bool
	ReverseOrder    bool
	StrongUptrend   bool
	Uptrend         bool
	Downtrend       bool
	StrongDowntrend bool
	Sideways        bool
	BreakoutHigh    bool
	BreakdownLow    bool
}

// IdentifyPatterns evaluates moving average alignment, the 10-day trend, and
// 20-day breakout levels. Requires at least 20 closes.
func IdentifyPatterns(closes []float64) (Patterns, error) {
	n := len(closes)
	if n < 20 {
		return Patterns{}, errors.New("not enough data for pattern detection")
	}

	var p Patterns
	current := closes[n-1]

	sma20, err := CalculateSMA(closes, 20)
	if err != nil {
		return Patterns{}, err
	}
	if sma60, err := CalculateSMA(closes, 60); err == nil {
		p.GoldenCross = sma20 > sma60 && current > sma20
		p.DeathCross = sma20 < sma60 && current < sma20
		if sma120, err := CalculateSMA(closes, 120); err == nil {
			p.PerfectOrder = current > sma20 && sma20 > sma60 && sma60 > sma120
			p.ReverseOrder = current < sma20 && sma20 < sma60 && sma60 < sma120
		}
	}

	// 10-day trend
	start := closes[n-10]
	if start != 0 {
		changePct := (current - start) / start * 100
		p.StrongUptrend = changePct > 10
		p.Uptrend = changePct > 3
		p.Downtrend = changePct < -3
		p.StrongDowntrend = changePct < -10
		p.Sideways = changePct >= -3 && changePct <= 3
	}

	// Breakout against the prior 20-day band, current bar excluded.
	window := closes[:n-1]
	if n > 20 {
		window = closes[n-20 : n-1]
	}
	recentHigh, recentLow := window[0], window[0]
	for _, c := range window[1:] {
		if c > recentHigh {
			recentHigh = c
		}
		if c < recentLow {
			recentLow = c
		}
	}
	p.BreakoutHigh = current > recentHigh*1.02
	p.BreakdownLow = current < recentLow*0.98

	return p, nil
}
