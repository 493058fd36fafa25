package indicator

import (
	"errors"
	"math"

	"stockweather/internal/model"
)

// CalculateRange scans the most recent lookback bars and returns the high and
// low. Shorter histories use every bar available.
func CalculateRange(bars []model.Bar, lookback int) (high, low float64, err error) {
	if lookback <= 0 {
		return 0, 0, errors.New("lookback must be positive")
	}
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := n - lookback
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// CalculateRangePosition returns where the current price sits within the
// given range (0.0~1.0). A collapsed range reads as the midpoint.
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
