package indicator

import (
	"errors"

	"stockweather/internal/model"
)

// Summary gathers every indicator the rules engine consumes for one ticker.
// MACD is nil and HasSMA60 false when the history is too short for them.
type Summary struct {
	CurrentPrice   float64
	PriceChange    float64
	PriceChangePct float64

	SMA20    float64
	SMA60    float64
	HasSMA60 bool

	RSI        float64
	MACD       *MACD
	Stochastic Stochastic
	Bollinger  Bollinger
	ATR        float64
	Volume     VolumeStats
	Patterns   Patterns
}

// Summarize computes the full indicator set from a daily bar history.
// Requires at least 20 bars.
func Summarize(bars []model.Bar) (*Summary, error) {
	if len(bars) < 20 {
		return nil, errors.New("need at least 20 bars to summarize")
	}

	closes := extractCloses(bars)
	highs := extractHighs(bars)
	lows := extractLows(bars)
	volumes := extractVolumes(bars)
	n := len(closes)

	s := &Summary{CurrentPrice: closes[n-1]}
	prev := closes[n-2]
	s.PriceChange = s.CurrentPrice - prev
	if prev > 0 {
		s.PriceChangePct = (s.CurrentPrice/prev - 1) * 100
	}

	var err error
	if s.SMA20, err = CalculateSMA(closes, 20); err != nil {
		return nil, err
	}
	if sma60, err := CalculateSMA(closes, 60); err == nil {
		s.SMA60 = sma60
		s.HasSMA60 = true
	}
	if s.RSI, err = CalculateRSI(closes, 14); err != nil {
		return nil, err
	}
	if macd, err := CalculateMACD(closes); err == nil {
		s.MACD = &macd
	}
	if s.Stochastic, err = CalculateStochastic(highs, lows, closes, 14); err != nil {
		return nil, err
	}
	if s.Bollinger, err = CalculateBollinger(closes, 20, 2); err != nil {
		return nil, err
	}
	if s.ATR, err = CalculateATR(highs, lows, closes, 14); err != nil {
		return nil, err
	}
	if s.Volume, err = CalculateVolumeStats(volumes, closes); err != nil {
		return nil, err
	}
	if s.Patterns, err = IdentifyPatterns(closes); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot condenses a bar history into the compact block served on the
// detail endpoint. MA60 falls back to MA20 for short histories; volatility
// covers the trailing 20 sessions.
func Snapshot(bars []model.Bar) (model.TechnicalSnapshot, error) {
	if len(bars) < 20 {
		return model.TechnicalSnapshot{}, errors.New("need at least 20 bars for a snapshot")
	}

	closes := extractCloses(bars)
	n := len(closes)

	ma20, err := CalculateSMA(closes, 20)
	if err != nil {
		return model.TechnicalSnapshot{}, err
	}
	ma60 := ma20
	if v, err := CalculateSMA(closes, 60); err == nil {
		ma60 = v
	}
	rsi, err := CalculateRSI(closes, 14)
	if err != nil {
		return model.TechnicalSnapshot{}, err
	}
	vol, err := AnnualizedVolatility(closes[n-20:])
	if err != nil {
		return model.TechnicalSnapshot{}, err
	}
	high, low, err := CalculateRange(bars, 252)
	if err != nil {
		return model.TechnicalSnapshot{}, err
	}
	pos, err := CalculateRangePosition(closes[n-1], high, low)
	if err != nil {
		return model.TechnicalSnapshot{}, err
	}

	return model.TechnicalSnapshot{
		MA20:           ma20,
		MA60:           ma60,
		RSI:            rsi,
		Volatility:     vol,
		Week52High:     high,
		Week52Low:      low,
		Week52Position: pos,
	}, nil
}
