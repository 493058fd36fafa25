package indicator

import (
	"math"
	"testing"
	"time"

	"stockweather/internal/model"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func risingCloses(n int, start, dailyPct float64) []float64 {
	closes := make([]float64, n)
	c := start
	for i := range closes {
		closes[i] = c
		c *= 1 + dailyPct/100
	}
	return closes
}

func barsFromCloses(closes []float64) []model.Bar {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Ticker:    "TEST",
			Timestamp: day.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got, err := CalculateSMA(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(got, 4.0, 1e-9) {
		t.Errorf("SMA(3) = %.4f, want 4.0", got)
	}
	if _, err := CalculateSMA(prices, 6); err == nil {
		t.Error("expected error for period longer than series")
	}
	if _, err := CalculateSMA(prices, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateEMA_SeededWithSMA(t *testing.T) {
	got, err := CalculateEMA([]float64{1, 2, 3, 4}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// seed = (1+2+3)/3 = 2, then (4-2)*0.5 + 2 = 3
	if !approx(got, 3.0, 1e-9) {
		t.Errorf("EMA = %.4f, want 3.0", got)
	}
}

func TestCalculateRSI_Extremes(t *testing.T) {
	up := risingCloses(30, 100, 1)
	got, err := CalculateRSI(up, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100.0 {
		t.Errorf("all-gains RSI = %.2f, want 100", got)
	}

	down := make([]float64, 30)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	got, err = CalculateRSI(down, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.0 {
		t.Errorf("all-losses RSI = %.2f, want 0", got)
	}
}

func TestCalculateRSI_InsufficientDataDefaults(t *testing.T) {
	got, err := CalculateRSI([]float64{1, 2, 3}, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50.0 {
		t.Errorf("short-series RSI = %.2f, want neutral 50", got)
	}
}

func TestCalculateMACD_Uptrend(t *testing.T) {
	closes := risingCloses(60, 100, 1)
	got, err := CalculateMACD(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Line <= 0 {
		t.Errorf("uptrend MACD line = %.4f, want > 0", got.Line)
	}
	if !approx(got.Histogram, got.Line-got.Signal, 1e-9) {
		t.Errorf("histogram %.4f != line-signal %.4f", got.Histogram, got.Line-got.Signal)
	}

	if _, err := CalculateMACD(risingCloses(25, 100, 1)); err == nil {
		t.Error("expected error below 26 closes")
	}
}

func TestCalculateBollinger_KnownWindow(t *testing.T) {
	got, err := CalculateBollinger([]float64{1, 2, 3, 4}, 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// sma 2.5, population std sqrt(1.25)
	std := math.Sqrt(1.25)
	if !approx(got.Middle, 2.5, 1e-9) {
		t.Errorf("middle = %.4f, want 2.5", got.Middle)
	}
	if !approx(got.Upper, 2.5+2*std, 1e-9) {
		t.Errorf("upper = %.4f, want %.4f", got.Upper, 2.5+2*std)
	}
	if !approx(got.Bandwidth, 4*std/2.5, 1e-9) {
		t.Errorf("bandwidth = %.4f, want %.4f", got.Bandwidth, 4*std/2.5)
	}
	wantB := (4 - got.Lower) / (4 * std)
	if !approx(got.PercentB, wantB, 1e-9) {
		t.Errorf("percentB = %.4f, want %.4f", got.PercentB, wantB)
	}
}

func TestCalculateBollinger_FlatSeries(t *testing.T) {
	flat := make([]float64, 25)
	for i := range flat {
		flat[i] = 100
	}
	got, err := CalculateBollinger(flat, 20, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Upper != 100 || got.Lower != 100 {
		t.Errorf("flat-series bands = [%.2f, %.2f], want collapsed at 100", got.Lower, got.Upper)
	}
	if got.PercentB != 0.5 {
		t.Errorf("flat-series percentB = %.2f, want 0.5", got.PercentB)
	}
}

func TestCalculateStochastic(t *testing.T) {
	highs := make([]float64, 14)
	lows := make([]float64, 14)
	closes := make([]float64, 14)
	for i := range highs {
		highs[i] = 110 + float64(i)
		lows[i] = 90 + float64(i)
		closes[i] = 100 + float64(i)
	}
	closes[13] = highs[13] // finish at the top of the range
	got, err := CalculateStochastic(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.K != 100 {
		t.Errorf("K = %.2f, want 100", got.K)
	}
	if !got.Overbought || got.Oversold {
		t.Errorf("expected overbought, got %+v", got)
	}
}

func TestCalculateStochastic_FlatRange(t *testing.T) {
	flat := make([]float64, 14)
	for i := range flat {
		flat[i] = 10
	}
	got, err := CalculateStochastic(flat, flat, flat, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.K != 50 {
		t.Errorf("flat-range K = %.2f, want 50", got.K)
	}
}

func TestCalculateATR_ConstantTrueRange(t *testing.T) {
	n := 16
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 11
		lows[i] = 9
		closes[i] = 10
	}
	got, err := CalculateATR(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(got, 2.0, 1e-9) {
		t.Errorf("ATR = %.4f, want 2.0", got)
	}
}

func TestCalculateVolumeStats(t *testing.T) {
	closes := risingCloses(20, 100, 1)
	volumes := make([]float64, 20)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[19] = 300

	got, err := CalculateVolumeStats(volumes, closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMA := (19*100.0 + 300.0) / 20
	if !approx(got.MA20, wantMA, 1e-9) {
		t.Errorf("volume MA = %.2f, want %.2f", got.MA20, wantMA)
	}
	if !approx(got.Ratio, 300/wantMA, 1e-9) {
		t.Errorf("ratio = %.3f, want %.3f", got.Ratio, 300/wantMA)
	}
	if !got.HighVolume {
		t.Error("expected high-volume flag at ratio > 1.5")
	}
	if !got.OBVRising {
		t.Error("expected rising OBV on an all-up series")
	}
}

func TestIdentifyPatterns_StrongUptrend(t *testing.T) {
	closes := risingCloses(30, 100, 2)
	got, err := IdentifyPatterns(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.StrongUptrend || !got.Uptrend {
		t.Errorf("expected strong uptrend flags, got %+v", got)
	}
	if got.Sideways || got.Downtrend {
		t.Errorf("unexpected bearish flags on rising series: %+v", got)
	}
	// no 60-day average on 30 bars
	if got.GoldenCross || got.DeathCross {
		t.Errorf("cross flags should stay unset without SMA60: %+v", got)
	}
}

func TestIdentifyPatterns_GoldenCrossAndOrder(t *testing.T) {
	closes := risingCloses(130, 100, 1)
	got, err := IdentifyPatterns(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.GoldenCross {
		t.Error("expected golden cross on a long rising series")
	}
	if !got.PerfectOrder {
		t.Error("expected perfect order with 120+ rising bars")
	}
}

func TestIdentifyPatterns_Breakout(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	closes[24] = 105 // clears the 20-day band by more than 2%
	got, err := IdentifyPatterns(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.BreakoutHigh {
		t.Error("expected breakout above prior high")
	}
	if got.BreakdownLow {
		t.Error("unexpected breakdown flag")
	}
}

func TestCalculateRange(t *testing.T) {
	bars := barsFromCloses([]float64{10, 30, 20})
	high, low, err := CalculateRange(bars, 252)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 30 || low != 10 {
		t.Errorf("range = [%.1f, %.1f], want [10, 30]", low, high)
	}

	high, low, err = CalculateRange(bars, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 30 || low != 20 {
		t.Errorf("2-bar range = [%.1f, %.1f], want [20, 30]", low, high)
	}
}

func TestCalculateRangePosition(t *testing.T) {
	cases := []struct {
		name                string
		current, high, low  float64
		want                float64
	}{
		{"middle", 15, 20, 10, 0.5},
		{"clamped above", 25, 20, 10, 1.0},
		{"clamped below", 5, 20, 10, 0.0},
		{"collapsed range", 10, 10, 10, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateRangePosition(tc.current, tc.high, tc.low)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approx(got, tc.want, 1e-9) {
				t.Errorf("position = %.3f, want %.3f", got, tc.want)
			}
		})
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	closes := make([]float64, 21)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] * 1.01
		} else {
			closes[i] = closes[i-1] * 0.99
		}
	}
	got, err := AnnualizedVolatility(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.01 * math.Sqrt(252) * 100
	if !approx(got, want, 1e-6) {
		t.Errorf("volatility = %.4f, want %.4f", got, want)
	}
}

func TestSummarize(t *testing.T) {
	bars := barsFromCloses(risingCloses(130, 100, 1))
	s, err := Summarize(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasSMA60 {
		t.Error("expected SMA60 with 130 bars")
	}
	if s.MACD == nil {
		t.Fatal("expected MACD with 130 bars")
	}
	if s.MACD.Line <= 0 {
		t.Errorf("uptrend MACD line = %.4f, want > 0", s.MACD.Line)
	}
	if s.RSI != 100 {
		t.Errorf("all-gains RSI = %.2f, want 100", s.RSI)
	}
	if !approx(s.PriceChangePct, 1.0, 1e-6) {
		t.Errorf("price change = %.4f%%, want 1%%", s.PriceChangePct)
	}
	if !s.Patterns.PerfectOrder {
		t.Error("expected perfect order on 130 rising bars")
	}
}

func TestSummarize_TooShort(t *testing.T) {
	if _, err := Summarize(barsFromCloses(risingCloses(10, 100, 1))); err == nil {
		t.Error("expected error below 20 bars")
	}
}

func TestSnapshot_ShortHistoryFallsBackToMA20(t *testing.T) {
	bars := barsFromCloses(risingCloses(30, 100, 1))
	snap, err := Snapshot(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MA60 != snap.MA20 {
		t.Errorf("MA60 = %.2f, want MA20 fallback %.2f", snap.MA60, snap.MA20)
	}
	if snap.Week52Position != 1.0 {
		t.Errorf("position = %.3f, want 1.0 at the series high", snap.Week52Position)
	}
	if snap.Volatility <= 0 {
		t.Errorf("volatility = %.4f, want > 0", snap.Volatility)
	}
}
