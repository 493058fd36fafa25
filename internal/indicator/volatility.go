package indicator

import (
	"errors"
	"math"
)

// DailyReturns converts a close series into simple day-over-day returns.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

// Mean returns the arithmetic mean, zero for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, zero for an empty slice.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// AnnualizedVolatility computes the standard deviation of daily returns over
// the given closes, annualized over 252 trading days, in percent.
func AnnualizedVolatility(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, errors.New("need at least two closes for volatility")
	}
	return StdDev(DailyReturns(closes)) * math.Sqrt(252) * 100, nil
}
