package indicator

import (
	"errors"
	"math"
)

// Bollinger holds the 20-period, 2-sigma band values plus the derived
// bandwidth and %B position.
type Bollinger struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64
	PercentB  float64
}

// CalculateBollinger computes Bollinger bands over the given period with the
// given standard deviation multiplier.
func CalculateBollinger(closes []float64, period int, numStd float64) (Bollinger, error) {
	if period <= 0 {
		return Bollinger{}, errors.New("period must be positive")
	}
	if len(closes) < period {
		return Bollinger{}, errors.New("not enough data for Bollinger calculation")
	}

	sma, err := CalculateSMA(closes, period)
	if err != nil {
		return Bollinger{}, err
	}

	window := closes[len(closes)-period:]
	var sumSq float64
	for _, c := range window {
		d := c - sma
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(period))

	b := Bollinger{
		Upper:  sma + numStd*std,
		Middle: sma,
		Lower:  sma - numStd*std,
	}
	if sma > 0 {
		b.Bandwidth = (2 * numStd * std) / sma
	}
	if std > 0 {
		b.PercentB = (closes[len(closes)-1] - b.Lower) / (2 * numStd * std)
	} else {
		b.PercentB = 0.5
	}
	return b, nil
}
