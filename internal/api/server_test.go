package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"stockweather/internal/analyzer"
	"stockweather/internal/fetch"
	"stockweather/internal/model"
	"stockweather/internal/search"
	"stockweather/internal/store"
	"stockweather/internal/universe"
)

type fakeFetcher struct {
	mu    sync.Mutex
	bars  map[string][]model.Bar
	calls int
	block chan struct{} // when set, BarsFor waits until closed
}

func (f *fakeFetcher) BarsFor(ctx context.Context, e universe.Entry, days int) ([]model.Bar, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	bars := f.bars[e.Ticker]
	if len(bars) == 0 {
		return nil, fetch.ErrNoData
	}
	return bars, nil
}

func (f *fakeFetcher) QuoteFor(ctx context.Context, e universe.Entry) (*fetch.Quote, error) {
	return nil, fetch.ErrNoData
}

func seedBars(ticker string, n int, drift float64) []model.Bar {
	base := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	price := 80.0
	for i := range bars {
		move := drift
		if i%2 == 0 {
			move += 1.2
		} else {
			move -= 0.9
		}
		price += move
		if price < 5 {
			price = 5
		}
		bars[i] = model.Bar{
			Ticker:    ticker,
			Timestamp: base.AddDate(0, 0, i),
			Open:      price - move,
			High:      price + 2,
			Low:       price - 2,
			Close:     price,
			Volume:    900_000,
		}
	}
	return bars
}

func testEntry(ticker, name, sector string, m model.Market) universe.Entry {
	return universe.Entry{
		Listing:     model.Listing{Ticker: ticker, Name: name, Sector: sector, Market: m},
		YahooSymbol: ticker,
		Fundamentals: model.Fundamentals{
			ROE: 10, HasROE: true,
			EPSYoY: 6, HasEPS: true,
		},
	}
}

func newTestServer(t *testing.T, f analyzer.Fetcher) (*Server, *httptest.Server) {
	t.Helper()
	u := universe.New([]universe.Entry{
		testEntry("005930", "Samsung Electronics", "IT", model.MarketKR),
		testEntry("055550", "Shinhan Financial", "Finance", model.MarketKR),
		testEntry("AAPL", "Apple", "IT", model.MarketUS),
	})

	cache, err := store.NewCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	snaps := store.NewSnapshotStore(t.TempDir())

	idx, err := search.New(u)
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	a := analyzer.New(analyzer.Options{
		Fetcher:   f,
		Cache:     cache,
		Snapshots: snaps,
		Universe:  u,
		Workers:   4,
	})

	srv := NewServer(a, cache, snaps, idx, []string{"yahoo"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func defaultFetcher() *fakeFetcher {
	return &fakeFetcher{bars: map[string][]model.Bar{
		"005930": seedBars("005930", 252, 0.3),
		"055550": seedBars("055550", 252, -0.2),
		"AAPL":   seedBars("AAPL", 252, 0.1),
	}}
}

func getJSON(t *testing.T, url string, dest any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestRootEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var root RootResponse
	resp := getJSON(t, ts.URL+"/", &root)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if root.Service != "stockweather" {
		t.Errorf("service = %q", root.Service)
	}
	if root.Stocks != 3 {
		t.Errorf("stocks = %d, want 3", root.Stocks)
	}
	if root.Endpoints["rankings"] != "/rankings" {
		t.Errorf("endpoints missing rankings: %v", root.Endpoints)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRankingsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var data model.RankingsData
	resp := getJSON(t, ts.URL+"/rankings?market=ALL&limit=2", &data)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if len(data.TopGainers) != 2 {
		t.Fatalf("gainers = %d, want 2", len(data.TopGainers))
	}
	if data.TopGainers[0].Probability < data.TopGainers[1].Probability {
		t.Error("gainers not sorted descending")
	}
	if data.UpdatedAt.IsZero() {
		t.Error("updated_at not stamped")
	}
}

func TestRankingsBadMarket(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var body map[string]string
	resp := getJSON(t, ts.URL+"/rankings?market=XX", &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

func TestRankingsBadLimit(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Get(ts.URL + "/rankings?limit=abc")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDetailEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var detail model.DetailedStock
	resp := getJSON(t, ts.URL+"/detail/005930", &detail)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if detail.Ticker != "005930" {
		t.Errorf("ticker = %q", detail.Ticker)
	}
	if len(detail.PriceHistory) == 0 {
		t.Error("missing price history")
	}
	if detail.CurrentPrice <= 0 {
		t.Errorf("current price = %v", detail.CurrentPrice)
	}
}

func TestDetailLowercaseTicker(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var detail model.DetailedStock
	resp := getJSON(t, ts.URL+"/detail/aapl", &detail)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if detail.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", detail.Ticker)
	}
}

func TestDetailNotFound(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var body map[string]string
	resp := getJSON(t, ts.URL+"/detail/ZZZZ", &body)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body["error"], "ZZZZ") {
		t.Errorf("error = %q", body["error"])
	}
}

func TestSectorsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var sectors SectorsResponse
	resp := getJSON(t, ts.URL+"/sectors", &sectors)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if sectors.Count != len(sectors.Sectors) {
		t.Errorf("count = %d, sectors = %d", sectors.Count, len(sectors.Sectors))
	}
	if sectors.Count != 2 {
		t.Errorf("count = %d, want 2 sectors", sectors.Count)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var health HealthResponse
	resp := getJSON(t, ts.URL+"/health", &health)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q", health.Status)
	}
	if !health.Cache {
		t.Error("cache not healthy")
	}
	if health.Stocks != 3 {
		t.Errorf("stocks = %d, want 3", health.Stocks)
	}
	if len(health.Sources) != 1 || health.Sources[0] != "yahoo" {
		t.Errorf("sources = %v", health.Sources)
	}
}

func TestAnalyzeFullLifecycle(t *testing.T) {
	srv, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Post(ts.URL+"/api/analyze/full", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var trig TriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&trig); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if trig.Status != "started" || trig.CheckURL != "/api/market/status" {
		t.Fatalf("trigger = %+v", trig)
	}

	waitForCompleted(t, srv)

	var status StatusResponse
	getJSON(t, ts.URL+"/api/market/status", &status)
	if status.Status != "completed" {
		t.Fatalf("status = %q", status.Status)
	}
	if status.LastCompletedAt == nil {
		t.Fatal("last_completed_at missing")
	}
	if status.AnalyzedCount != 3 {
		t.Errorf("analyzed_count = %d, want 3", status.AnalyzedCount)
	}

	// A second trigger inside the retention window serves the stored result.
	resp, err = http.Post(ts.URL+"/api/analyze/full", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var cached CachedFullResponse
	if err := json.NewDecoder(resp.Body).Decode(&cached); err != nil {
		t.Fatalf("decode cached: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !cached.CacheInfo.Cached {
		t.Error("cache_info.cached = false")
	}
	if cached.CacheInfo.NextUpdateIn <= 0 || cached.CacheInfo.NextUpdateIn > 600 {
		t.Errorf("next_update_in = %d", cached.CacheInfo.NextUpdateIn)
	}
	if cached.AnalyzedCount != 3 {
		t.Errorf("analyzed_count = %d, want 3", cached.AnalyzedCount)
	}

	var dates HistoryDatesResponse
	getJSON(t, ts.URL+"/api/history/dates", &dates)
	if dates.Count != 1 {
		t.Errorf("snapshot dates = %d, want 1", dates.Count)
	}
}

func TestAnalyzeFullInProgress(t *testing.T) {
	f := defaultFetcher()
	f.block = make(chan struct{})
	srv, ts := newTestServer(t, f)

	resp, err := http.Post(ts.URL+"/api/analyze/full", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/analyze/full", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var trig TriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&trig); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if trig.Status != "in_progress" {
		t.Fatalf("status = %q, want in_progress", trig.Status)
	}

	close(f.block)
	waitForCompleted(t, srv)
}

func waitForCompleted(t *testing.T, srv *Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if srv.analyzer.Status().Status == analyzer.JobCompleted {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job did not complete, status %s", srv.analyzer.Status().Status)
}

func TestMarketStatusIdle(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var status StatusResponse
	resp := getJSON(t, ts.URL+"/api/market/status", &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if status.Status != "idle" {
		t.Errorf("status = %q, want idle", status.Status)
	}
	if status.LastCompletedAt != nil {
		t.Error("last_completed_at set before any run")
	}
}

func TestMarketSummaryEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var summary analyzer.MarketSummary
	resp := getJSON(t, ts.URL+"/api/market/summary", &summary)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if summary.TotalStocks != 3 {
		t.Errorf("total = %d, want 3", summary.TotalStocks)
	}
	if summary.Trend == "" {
		t.Error("trend empty")
	}
}

func TestStocksListEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var list ListResponse
	getJSON(t, ts.URL+"/api/stocks/list", &list)
	if list.Count != 3 {
		t.Fatalf("count = %d, want 3", list.Count)
	}

	getJSON(t, ts.URL+"/api/stocks/list?market=KR", &list)
	if list.Count != 2 {
		t.Fatalf("KR count = %d, want 2", list.Count)
	}

	getJSON(t, ts.URL+"/api/stocks/list?market=KR&sector=Finance", &list)
	if list.Count != 1 || list.Stocks[0].Ticker != "055550" {
		t.Fatalf("Finance = %+v", list.Stocks)
	}
}

func TestStocksListBadMarket(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Get(ts.URL + "/api/stocks/list?market=EU")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStocksSearchEndpoint(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	body := bytes.NewBufferString(`{"query":"samsung","limit":5}`)
	resp, err := http.Post(ts.URL+"/api/stocks/search", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var res SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if res.Count == 0 || res.Results[0].Ticker != "005930" {
		t.Fatalf("results = %+v", res.Results)
	}
}

func TestStocksSearchEmptyQuery(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	body := bytes.NewBufferString(`{"query":"  "}`)
	resp, err := http.Post(ts.URL+"/api/stocks/search", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStocksSearchBadBody(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	body := bytes.NewBufferString(`{`)
	resp, err := http.Post(ts.URL+"/api/stocks/search", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryDatesEmpty(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	var dates HistoryDatesResponse
	resp := getJSON(t, ts.URL+"/api/history/dates", &dates)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if dates.Count != 0 || dates.Dates == nil {
		t.Errorf("dates = %+v", dates)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Post(ts.URL+"/rankings", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	req, _ := http.NewRequest("OPTIONS", ts.URL+"/rankings", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestCorrelationIDGenerated(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("missing X-Correlation-ID header")
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	_, ts := newTestServer(t, defaultFetcher())

	req, _ := http.NewRequest("GET", ts.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Correlation-ID"); got != "req-42" {
		t.Errorf("correlation id = %q, want req-42", got)
	}
}

func TestRecoveryMiddlewareCatchesPanic(t *testing.T) {
	srv, _ := newTestServer(t, defaultFetcher())

	handler := srv.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	srv, _ := newTestServer(t, defaultFetcher())

	handler := srv.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "teapot")
	}))

	req := httptest.NewRequest("GET", "/tea", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", w.Code)
	}
}
