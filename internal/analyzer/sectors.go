package analyzer

import (
	"context"
	"sort"

	"stockweather/internal/model"
)

const sectorKey = "sector_weather"

// Sectors returns the sector weather map over the whole universe, sorted by
// mean probability descending.
func (a *Analyzer) Sectors(ctx context.Context) ([]model.SectorWeather, error) {
	var cached []model.SectorWeather
	if hit, err := a.cache.Get(ctx, sectorKey, &cached); err != nil {
		a.log.Warn("cache read failed", "key", sectorKey, "error", err)
	} else if hit {
		return cached, nil
	}

	rows, err := a.marketRows(ctx, model.MarketAll)
	if err != nil {
		return nil, err
	}

	sectors := sectorize(rows)
	if err := a.cache.Set(ctx, sectorKey, sectors, a.rankingsTTL); err != nil {
		a.log.Warn("cache write failed", "key", sectorKey, "error", err)
	}
	return sectors, nil
}

// sectorize aggregates ranking rows per sector: mean probability, stock
// count, and the highest-probability stock as the sector's headliner.
func sectorize(rows []model.StockRanking) []model.SectorWeather {
	type agg struct {
		sum   float64
		count int
		top   string
		topP  float64
	}

	byName := make(map[string]*agg)
	var order []string
	for _, r := range rows {
		s, ok := byName[r.Sector]
		if !ok {
			s = &agg{}
			byName[r.Sector] = s
			order = append(order, r.Sector)
		}
		s.sum += r.Probability
		s.count++
		if s.count == 1 || r.Probability > s.topP {
			s.top = r.Name
			s.topP = r.Probability
		}
	}

	out := make([]model.SectorWeather, 0, len(order))
	for _, name := range order {
		s := byName[name]
		mean := s.sum / float64(s.count)
		icon, desc := Weather(mean)
		out = append(out, model.SectorWeather{
			Sector:      name,
			Probability: mean,
			WeatherIcon: icon,
			Description: desc,
			StockCount:  s.count,
			TopStock:    s.top,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}
