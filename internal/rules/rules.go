// Package rules turns an indicator summary into a trading signal by blending
// five weighted category analyses with the fundamental score.
package rules

import (
	"fmt"

	"stockweather/internal/indicator"
)

// Direction is the signal's trade recommendation.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD"
)

// RiskLevel grades volatility exposure off ATR and band width.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Signal is the aggregate output of a rules evaluation. Score is the blended
// composite in [0,1] that the prediction ensemble consumes.
type Signal struct {
	Direction  Direction
	Strength   float64
	Score      float64
	Confidence float64
	Reasons    []string
	Risk       RiskLevel
}

// Category weights. They sum to 1.
const (
	weightTrend      = 0.25
	weightMomentum   = 0.25
	weightVolatility = 0.15
	weightVolume     = 0.15
	weightPattern    = 0.20
)

const maxReasons = 5

type category struct {
	score      float64
	confidence float64
	reasons    []string
}

// Generate evaluates every category against the indicator summary, blends in
// the fundamental adjustment at 30%, and grades direction and risk.
func Generate(tech *indicator.Summary, fundamentalScore float64) Signal {
	categories := []struct {
		weight float64
		result category
	}{
		{weightTrend, analyzeTrend(tech)},
		{weightMomentum, analyzeMomentum(tech)},
		{weightVolatility, analyzeVolatility(tech)},
		{weightVolume, analyzeVolume(tech)},
		{weightPattern, analyzePatterns(tech)},
	}

	var score, confidence float64
	var reasons []string
	for _, c := range categories {
		score += c.result.score * c.weight
		confidence += c.result.confidence * c.weight
		reasons = append(reasons, c.result.reasons...)
	}

	score = score*0.7 + fundamentalAdjustment(fundamentalScore)*0.3

	var direction Direction
	var strength float64
	switch {
	case score > 0.6:
		direction = Buy
		strength = min(1.0, (score-0.5)*2)
	case score < 0.4:
		direction = Sell
		strength = min(1.0, (0.5-score)*2)
	default:
		direction = Hold
		strength = 0.5
	}

	risk := riskLevel(tech)
	switch risk {
	case RiskHigh:
		confidence *= 0.8
	case RiskMedium:
		confidence *= 0.9
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return Signal{
		Direction:  direction,
		Strength:   strength,
		Score:      score,
		Confidence: confidence,
		Reasons:    reasons,
		Risk:       risk,
	}
}

func analyzeTrend(t *indicator.Summary) category {
	c := category{score: 0.5}

	if t.HasSMA60 {
		switch {
		case t.CurrentPrice > t.SMA20 && t.SMA20 > t.SMA60:
			c.score += 0.3
			c.confidence += 0.3
			c.reasons = append(c.reasons, "perfect uptrend: price above MA20 above MA60")
		case t.SMA20 > t.SMA60:
			c.score += 0.2
			c.confidence += 0.2
			c.reasons = append(c.reasons, "golden cross: MA20 over MA60")
		case t.CurrentPrice < t.SMA20 && t.SMA20 < t.SMA60:
			c.score -= 0.3
			c.confidence += 0.3
			c.reasons = append(c.reasons, "perfect downtrend: price below MA20 below MA60")
		case t.SMA20 < t.SMA60:
			c.score -= 0.2
			c.confidence += 0.2
			c.reasons = append(c.reasons, "dead cross: MA20 under MA60")
		}
	}

	if t.Patterns.StrongUptrend {
		c.score += 0.2
		c.confidence += 0.2
		c.reasons = append(c.reasons, "strong uptrend over the last 10 sessions")
	} else if t.Patterns.StrongDowntrend {
		c.score -= 0.2
		c.confidence += 0.2
		c.reasons = append(c.reasons, "strong downtrend over the last 10 sessions")
	}

	return c
}

func analyzeMomentum(t *indicator.Summary) category {
	c := category{score: 0.5}

	switch {
	case t.RSI < 30:
		c.score += 0.25
		c.confidence += 0.3
		c.reasons = append(c.reasons, fmt.Sprintf("RSI %.1f: oversold, rebound likely", t.RSI))
	case t.RSI > 70:
		c.score -= 0.25
		c.confidence += 0.3
		c.reasons = append(c.reasons, fmt.Sprintf("RSI %.1f: overbought, pullback likely", t.RSI))
	case t.RSI >= 40 && t.RSI <= 60:
		c.confidence += 0.1
		c.reasons = append(c.reasons, fmt.Sprintf("RSI %.1f: neutral zone", t.RSI))
	}

	if t.MACD != nil {
		if t.MACD.Histogram > 0 && t.MACD.Line > 0 {
			c.score += 0.2
			c.confidence += 0.2
			c.reasons = append(c.reasons, "MACD histogram positive: upward momentum")
		} else if t.MACD.Histogram < 0 && t.MACD.Line < 0 {
			c.score -= 0.2
			c.confidence += 0.2
			c.reasons = append(c.reasons, "MACD histogram negative: downward momentum")
		}
	}

	if t.Stochastic.Oversold {
		c.score += 0.15
		c.confidence += 0.2
		c.reasons = append(c.reasons, "stochastic oversold: rebound signal")
	} else if t.Stochastic.Overbought {
		c.score -= 0.15
		c.confidence += 0.2
		c.reasons = append(c.reasons, "stochastic overbought: pullback signal")
	}

	return c
}

func analyzeVolatility(t *indicator.Summary) category {
	c := category{score: 0.5}

	if t.Bollinger.PercentB < 0.2 {
		c.score += 0.2
		c.confidence += 0.25
		c.reasons = append(c.reasons, "price near lower Bollinger band: bounce likely")
	} else if t.Bollinger.PercentB > 0.8 {
		c.score -= 0.2
		c.confidence += 0.25
		c.reasons = append(c.reasons, "price near upper Bollinger band: pullback likely")
	}

	if t.Bollinger.Bandwidth < 0.1 {
		c.confidence += 0.15
		c.reasons = append(c.reasons, "Bollinger squeeze: volatility expansion ahead")
	}

	return c
}

func analyzeVolume(t *indicator.Summary) category {
	c := category{score: 0.5}

	if t.Volume.HighVolume {
		if t.PriceChangePct > 0 {
			c.score += 0.2
			c.confidence += 0.25
			c.reasons = append(c.reasons, fmt.Sprintf("volume %.1fx average with price up", t.Volume.Ratio))
		} else {
			c.score -= 0.2
			c.confidence += 0.25
			c.reasons = append(c.reasons, fmt.Sprintf("volume %.1fx average with price down", t.Volume.Ratio))
		}
	}

	if t.Volume.OBVRising {
		c.score += 0.1
		c.confidence += 0.15
		c.reasons = append(c.reasons, "OBV rising: accumulation in progress")
	} else {
		c.score -= 0.1
		c.confidence += 0.15
		c.reasons = append(c.reasons, "OBV falling: sellers in control")
	}

	return c
}

func analyzePatterns(t *indicator.Summary) category {
	c := category{score: 0.5}
	p := t.Patterns

	if p.GoldenCross {
		c.score += 0.3
		c.confidence += 0.35
		c.reasons = append(c.reasons, "golden cross pattern: strong buy signal")
	} else if p.DeathCross {
		c.score -= 0.3
		c.confidence += 0.35
		c.reasons = append(c.reasons, "death cross pattern: strong sell signal")
	}

	if p.BreakoutHigh {
		c.score += 0.25
		c.confidence += 0.3
		c.reasons = append(c.reasons, "breakout above the 20-day high")
	} else if p.BreakdownLow {
		c.score -= 0.25
		c.confidence += 0.3
		c.reasons = append(c.reasons, "breakdown below the 20-day low")
	}

	if p.PerfectOrder {
		c.score += 0.2
		c.confidence += 0.25
		c.reasons = append(c.reasons, "moving averages in perfect order")
	} else if p.ReverseOrder {
		c.score -= 0.2
		c.confidence += 0.25
		c.reasons = append(c.reasons, "moving averages in reverse order")
	}

	return c
}

// fundamentalAdjustment maps the composite fundamental score onto the three
// adjustment levels blended into the final signal.
func fundamentalAdjustment(score float64) float64 {
	switch {
	case score > 0.7:
		return 0.7
	case score < 0.3:
		return 0.3
	default:
		return 0.5
	}
}

func riskLevel(t *indicator.Summary) RiskLevel {
	atrRatio := 0.0
	if t.CurrentPrice > 0 {
		atrRatio = t.ATR / t.CurrentPrice
	}
	bandwidth := t.Bollinger.Bandwidth

	switch {
	case atrRatio > 0.06 || bandwidth > 0.3:
		return RiskHigh
	case atrRatio > 0.04 || bandwidth > 0.2:
		return RiskMedium
	default:
		return RiskLow
	}
}
