package indicator

import "errors"

// VolumeStats summarizes volume behavior relative to the 20-day average plus
// the on-balance-volume trend over the last five sessions.
type VolumeStats struct {
	MA20       float64
	Ratio      float64
	OBVRising  bool
	HighVolume bool
}

// CalculateVolumeStats computes the 20-day volume average, the latest
// volume's ratio against it, and the OBV trend. Requires 20 bars of both
// volumes and closes.
func CalculateVolumeStats(volumes, closes []float64) (VolumeStats, error) {
	if len(volumes) < 20 || len(closes) < 20 {
		return VolumeStats{}, errors.New("not enough data for volume stats")
	}

	sum := 0.0
	for i := len(volumes) - 20; i < len(volumes); i++ {
		sum += volumes[i]
	}
	ma := sum / 20

	ratio := 1.0
	if ma > 0 {
		ratio = volumes[len(volumes)-1] / ma
	}

	// OBV: add volume on up days, subtract on down days.
	obv := 0.0
	obvSeries := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i] > closes[i-1] {
			obv += volumes[i]
		} else if closes[i] < closes[i-1] {
			obv -= volumes[i]
		}
		obvSeries = append(obvSeries, obv)
	}

	n := len(obvSeries)
	rising := n >= 5 && obvSeries[n-1] > obvSeries[n-5]

	return VolumeStats{
		MA20:       ma,
		Ratio:      ratio,
		OBVRising:  rising,
		HighVolume: ratio > 1.5,
	}, nil
}
