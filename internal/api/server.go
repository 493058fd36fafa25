// Package api serves the stockweather REST surface: rankings, per-stock
// detail, sector weather, the full-market job, and the universe helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockweather/internal/analyzer"
	"stockweather/internal/fetch"
	"stockweather/internal/model"
	"stockweather/internal/search"
	"stockweather/internal/store"
)

// Server serves the HTTP API over an analyzer and its stores.
type Server struct {
	analyzer  *analyzer.Analyzer
	cache     *store.Cache
	snapshots *store.SnapshotStore
	search    *search.Index
	sources   []string
	log       *slog.Logger
	started   time.Time
}

// NewServer creates the API server. sources names the active bar upstreams
// for the health endpoint.
func NewServer(a *analyzer.Analyzer, cache *store.Cache, snapshots *store.SnapshotStore, idx *search.Index, sources []string) *Server {
	return &Server{
		analyzer:  a,
		cache:     cache,
		snapshots: snapshots,
		search:    idx,
		sources:   sources,
		log:       slog.Default().With("component", "api"),
		started:   time.Now(),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /rankings", s.handleRankings)
	mux.HandleFunc("GET /detail/{ticker}", s.handleDetail)
	mux.HandleFunc("GET /sectors", s.handleSectors)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze/full", s.handleAnalyzeFull)
	mux.HandleFunc("GET /api/market/status", s.handleMarketStatus)
	mux.HandleFunc("GET /api/market/summary", s.handleMarketSummary)
	mux.HandleFunc("GET /api/stocks/list", s.handleStocksList)
	mux.HandleFunc("POST /api/stocks/search", s.handleStocksSearch)
	mux.HandleFunc("GET /api/history/dates", s.handleHistoryDates)
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.withMiddleware(mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseLimit extracts the rankings limit from the "limit" query param.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if n > 50 {
		n = 50
	}
	return n, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, RootResponse{
		Service: "stockweather",
		Stocks:  s.analyzer.Universe().Len(),
		Endpoints: map[string]string{
			"rankings":      "/rankings",
			"detail":        "/detail/{ticker}",
			"sectors":       "/sectors",
			"health":        "/health",
			"analyze_full":  "/api/analyze/full",
			"market_status": "/api/market/status",
			"summary":       "/api/market/summary",
			"stocks_list":   "/api/stocks/list",
			"stocks_search": "/api/stocks/search",
			"history_dates": "/api/history/dates",
		},
	})
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	market, err := model.ParseMarket(r.URL.Query().Get("market"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := s.analyzer.Rankings(r.Context(), market, limit)
	if err != nil {
		s.log.Error("rankings failed", "market", market, "error", err)
		writeError(w, http.StatusInternalServerError, "rankings unavailable")
		return
	}
	writeJSON(w, data)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(r.PathValue("ticker"))

	detail, err := s.analyzer.Detail(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, analyzer.ErrUnknownTicker) || errors.Is(err, fetch.ErrNoData) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("stock %s not found", ticker))
			return
		}
		s.log.Error("detail failed", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "detail unavailable")
		return
	}
	writeJSON(w, detail)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.analyzer.Sectors(r.Context())
	if err != nil {
		s.log.Error("sector weather failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sector weather unavailable")
		return
	}
	writeJSON(w, SectorsResponse{Sectors: sectors, Count: len(sectors)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cacheOK := s.cache.Healthy(r.Context())
	status := "ok"
	if !cacheOK {
		status = "degraded"
	}
	writeJSON(w, HealthResponse{
		Status:  status,
		Cache:   cacheOK,
		Sources: s.sources,
		Stocks:  s.analyzer.Universe().Len(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleAnalyzeFull(w http.ResponseWriter, r *http.Request) {
	trig := s.analyzer.StartFull(r.Context())
	switch {
	case trig.Result != nil:
		writeJSON(w, CachedFullResponse{
			FullResult: *trig.Result,
			CacheInfo: CacheInfo{
				Cached:       true,
				AgeSeconds:   int(trig.Age.Seconds()),
				NextUpdateIn: int((analyzer.ResultRetention - trig.Age).Seconds()),
			},
		})
	case trig.Running:
		writeJSONStatus(w, http.StatusAccepted, TriggerResponse{
			Status:   "in_progress",
			Message:  "full-market analysis already in progress",
			CheckURL: "/api/market/status",
		})
	default:
		writeJSONStatus(w, http.StatusAccepted, TriggerResponse{
			Status:   "started",
			Message:  "full-market analysis started",
			CheckURL: "/api/market/status",
		})
	}
}

func (s *Server) handleMarketStatus(w http.ResponseWriter, r *http.Request) {
	info := s.analyzer.Status()
	resp := StatusResponse{Status: string(info.Status)}
	if !info.LastCompletedAt.IsZero() {
		t := info.LastCompletedAt
		resp.LastCompletedAt = &t
		resp.AnalyzedCount = info.AnalyzedCount
	}
	writeJSON(w, resp)
}

func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.analyzer.Summary(r.Context())
	if err != nil {
		s.log.Error("market summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "market summary unavailable")
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleStocksList(w http.ResponseWriter, r *http.Request) {
	market, err := model.ParseMarket(r.URL.Query().Get("market"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sector := r.URL.Query().Get("sector")

	listings := s.analyzer.Universe().Listings(market)
	if sector != "" {
		filtered := make([]model.Listing, 0, len(listings))
		for _, l := range listings {
			if l.Sector == sector {
				filtered = append(filtered, l)
			}
		}
		listings = filtered
	}
	writeJSON(w, ListResponse{Stocks: listings, Count: len(listings)})
}

func (s *Server) handleStocksSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	results, err := s.search.Search(req.Query, req.Limit)
	if err != nil {
		s.log.Error("search failed", "query", req.Query, "error", err)
		writeError(w, http.StatusInternalServerError, "search unavailable")
		return
	}
	writeJSON(w, SearchResponse{Results: results, Count: len(results)})
}

func (s *Server) handleHistoryDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.snapshots.ListDates(r.Context())
	if err != nil {
		s.log.Error("listing snapshot dates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, HistoryDatesResponse{Dates: dates, Count: len(dates)})
}
