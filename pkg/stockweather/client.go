// Package stockweather provides a Go SDK for the stockweather-server API.
package stockweather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a stockweather-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client targeting the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Rankings fetches the probability rankings for one market.
func (c *Client) Rankings(ctx context.Context, market Market, limit int) (*Rankings, error) {
	q := url.Values{}
	if market != "" {
		q.Set("market", string(market))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var data Rankings
	if err := c.get(ctx, "/rankings?"+q.Encode(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Detail fetches the per-stock detail for a ticker.
func (c *Client) Detail(ctx context.Context, ticker string) (*StockDetail, error) {
	var detail StockDetail
	if err := c.get(ctx, "/detail/"+url.PathEscape(ticker), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Sectors fetches the sector weather map.
func (c *Client) Sectors(ctx context.Context) ([]SectorWeather, error) {
	var resp struct {
		Sectors []SectorWeather `json:"sectors"`
	}
	if err := c.get(ctx, "/sectors", &resp); err != nil {
		return nil, err
	}
	return resp.Sectors, nil
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// AnalyzeFull triggers a full-market analysis. The server answers with a
// retained result when one is fresh enough, otherwise with the job state.
func (c *Client) AnalyzeFull(ctx context.Context) (*AnalyzeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze/full", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, unreachable(err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var cached struct {
			FullResult
			CacheInfo CacheInfo `json:"cache_info"`
		}
		if err := json.Unmarshal(body, &cached); err != nil {
			return nil, fmt.Errorf("parse analyze response: %w", err)
		}
		return &AnalyzeResult{Status: "cached", Result: &cached.FullResult, CacheInfo: &cached.CacheInfo}, nil
	case resp.StatusCode == http.StatusAccepted:
		var trig struct {
			Status   string `json:"status"`
			Message  string `json:"message"`
			CheckURL string `json:"check_url"`
		}
		if err := json.Unmarshal(body, &trig); err != nil {
			return nil, fmt.Errorf("parse analyze response: %w", err)
		}
		return &AnalyzeResult{Status: trig.Status, Message: trig.Message, CheckURL: trig.CheckURL}, nil
	default:
		return nil, fromStatus(resp.StatusCode, body)
	}
}

// MarketStatus polls the full-market analysis job.
func (c *Client) MarketStatus(ctx context.Context) (*JobStatus, error) {
	var status JobStatus
	if err := c.get(ctx, "/api/market/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// MarketSummary fetches the market-wide sentiment report.
func (c *Client) MarketSummary(ctx context.Context) (*MarketSummary, error) {
	var summary MarketSummary
	if err := c.get(ctx, "/api/market/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Stocks lists the universe, optionally filtered by market and sector.
func (c *Client) Stocks(ctx context.Context, market Market, sector string) ([]Listing, error) {
	q := url.Values{}
	if market != "" {
		q.Set("market", string(market))
	}
	if sector != "" {
		q.Set("sector", sector)
	}
	var resp struct {
		Stocks []Listing `json:"stocks"`
	}
	if err := c.get(ctx, "/api/stocks/list?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// Search finds stocks by name, ticker, or sector.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Listing, error) {
	payload := map[string]any{"query": query, "limit": limit}
	var resp struct {
		Results []Listing `json:"results"`
	}
	if err := c.post(ctx, "/api/stocks/search", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// HistoryDates lists the available prediction snapshot dates.
func (c *Client) HistoryDates(ctx context.Context) ([]string, error) {
	var resp struct {
		Dates []string `json:"dates"`
	}
	if err := c.get(ctx, "/api/history/dates", &resp); err != nil {
		return nil, err
	}
	return resp.Dates, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *Client) post(ctx context.Context, path string, payload, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return unreachable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unreachable(err)
	}

	if resp.StatusCode != http.StatusOK {
		return fromStatus(resp.StatusCode, body)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// errorDetail extracts the server's error message from a response body.
func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	s := string(bytes.TrimSpace(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
