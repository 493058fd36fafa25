package analyzer

import (
	"context"
	"fmt"
	"time"

	"stockweather/internal/model"
)

// clampLimit bounds a requested per-side row count to [1,50]; zero means
// the default of 10.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 50:
		return 50
	default:
		return limit
	}
}

// Rankings returns the probability rankings for a market, limit rows per
// side.
func (a *Analyzer) Rankings(ctx context.Context, m model.Market, limit int) (*model.RankingsData, error) {
	limit = clampLimit(limit)

	key := rankingsKey(m, limit)
	var cached model.RankingsData
	if hit, err := a.cache.Get(ctx, key, &cached); err != nil {
		a.log.Warn("cache read failed", "key", key, "error", err)
	} else if hit {
		return &cached, nil
	}

	rows, err := a.marketRows(ctx, m)
	if err != nil {
		return nil, err
	}

	data := splitRankings(rows, limit, limit, time.Now())
	if err := a.cache.Set(ctx, key, data, a.rankingsTTL); err != nil {
		a.log.Warn("cache write failed", "key", key, "error", err)
	}
	return data, nil
}

// Refresh recomputes a market's analysis and overwrites the cached rows,
// the default rankings split, and (for ALL) the sector map. The scheduler
// calls this so interactive requests keep serving warm caches.
func (a *Analyzer) Refresh(ctx context.Context, m model.Market, limit int) error {
	limit = clampLimit(limit)

	rows, err := a.fanOut(ctx, a.universe.Market(m))
	if err != nil {
		return err
	}

	now := time.Now()
	if err := a.cache.Set(ctx, rowsKey(m), rows, a.rankingsTTL); err != nil {
		return fmt.Errorf("cache rows: %w", err)
	}
	if err := a.cache.Set(ctx, rankingsKey(m, limit), splitRankings(rows, limit, limit, now), a.rankingsTTL); err != nil {
		return fmt.Errorf("cache rankings: %w", err)
	}
	if m == model.MarketAll {
		if err := a.cache.Set(ctx, sectorKey, sectorize(rows), a.rankingsTTL); err != nil {
			return fmt.Errorf("cache sectors: %w", err)
		}
	}
	return nil
}

// splitRankings cuts probability-sorted rows into the two ranking sides:
// gainers from the top in descending order, losers from the bottom in
// ascending order. With fewer rows than 2x the limit the sides overlap.
func splitRankings(rows []model.StockRanking, gainers, losers int, now time.Time) *model.RankingsData {
	if gainers > len(rows) {
		gainers = len(rows)
	}
	if losers > len(rows) {
		losers = len(rows)
	}

	top := append([]model.StockRanking(nil), rows[:gainers]...)

	bottom := make([]model.StockRanking, 0, losers)
	for i := len(rows) - 1; i >= len(rows)-losers; i-- {
		bottom = append(bottom, rows[i])
	}

	return &model.RankingsData{
		TopGainers: top,
		TopLosers:  bottom,
		UpdatedAt:  now,
	}
}
