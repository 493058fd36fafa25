package indicator

import "errors"

// MACD holds the moving average convergence divergence triple.
type MACD struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// CalculateMACD computes the 12/26 MACD line and its 9-period signal line.
// Requires at least 26 closes. When fewer than 9 MACD points exist the signal
// collapses to the MACD line itself.
func CalculateMACD(closes []float64) (MACD, error) {
	if len(closes) < 26 {
		return MACD{}, errors.New("not enough data for MACD calculation")
	}

	e12 := emaSeries(closes, 12)
	e26 := emaSeries(closes, 26)
	line := e12[len(closes)-1] - e26[len(closes)-1]

	// One MACD point per prefix long enough to carry both EMAs.
	var points []float64
	for i := 26; i < len(closes); i++ {
		points = append(points, e12[i]-e26[i])
	}

	signal := line
	if len(points) >= 9 {
		s, err := CalculateEMA(points, 9)
		if err == nil {
			signal = s
		}
	}
	return MACD{Line: line, Signal: signal, Histogram: line - signal}, nil
}
