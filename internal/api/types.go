package api

import (
	"time"

	"stockweather/internal/analyzer"
	"stockweather/internal/model"
)

// RootResponse is the service index served on /.
type RootResponse struct {
	Service   string            `json:"service"`
	Stocks    int               `json:"stocks"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse reports liveness of the service and its collaborators.
type HealthResponse struct {
	Status  string   `json:"status"` // ok or degraded
	Cache   bool     `json:"cache"`
	Sources []string `json:"sources"` // active bar sources
	Stocks  int      `json:"stocks"`
	Uptime  string   `json:"uptime"`
}

// SectorsResponse wraps the sector weather map.
type SectorsResponse struct {
	Sectors []model.SectorWeather `json:"sectors"`
	Count   int                   `json:"count"`
}

// TriggerResponse reports a full-market analysis trigger that did not serve
// a cached result.
type TriggerResponse struct {
	Status   string `json:"status"` // started or in_progress
	Message  string `json:"message"`
	CheckURL string `json:"check_url,omitempty"`
}

// CacheInfo annotates a full-market result served from retention.
type CacheInfo struct {
	Cached       bool `json:"cached"`
	AgeSeconds   int  `json:"age_seconds"`
	NextUpdateIn int  `json:"next_update_in"`
}

// CachedFullResponse is a retained full-market result with cache metadata.
type CachedFullResponse struct {
	analyzer.FullResult
	CacheInfo CacheInfo `json:"cache_info"`
}

// StatusResponse reports the full-market job state.
type StatusResponse struct {
	Status          string     `json:"status"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`
	AnalyzedCount   int        `json:"analyzed_count,omitempty"`
}

// ListResponse is the universe listing payload.
type ListResponse struct {
	Stocks []model.Listing `json:"stocks"`
	Count  int             `json:"count"`
}

// SearchRequest is the body of POST /api/stocks/search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// SearchResponse carries search hits in relevance order.
type SearchResponse struct {
	Results []model.Listing `json:"results"`
	Count   int             `json:"count"`
}

// HistoryDatesResponse lists the available prediction snapshot dates.
type HistoryDatesResponse struct {
	Dates []string `json:"dates"`
	Count int      `json:"count"`
}
