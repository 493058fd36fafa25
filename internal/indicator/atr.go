package indicator

import (
	"errors"
	"math"
)

// CalculateATR computes the average true range over the given period as a
// plain mean of the most recent true ranges. Requires period+1 bars.
func CalculateATR(highs, lows, closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	n := len(closes)
	if len(highs) < period+1 || len(lows) < period+1 || n < period+1 {
		return 0, errors.New("not enough data for ATR calculation")
	}

	trueRanges := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		highLow := highs[i] - lows[i]
		highClose := math.Abs(highs[i] - closes[i-1])
		lowClose := math.Abs(lows[i] - closes[i-1])
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highClose, lowClose)))
	}

	sum := 0.0
	for i := len(trueRanges) - period; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(period), nil
}
