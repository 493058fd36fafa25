// Package view holds the client-side view models: single-owner screen state
// for rankings and detail, with cancel-and-replace fetches and a generation
// counter so a late response can never overwrite fresher data.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"stockweather/pkg/stockweather"
)

// Tab selects which ranking side the screen shows.
type Tab int

const (
	TabGainers Tab = iota
	TabLosers
)

// String returns the tab's display label.
func (t Tab) String() string {
	if t == TabLosers {
		return "LOSERS"
	}
	return "GAINERS"
}

// RankingState is a render snapshot of the rankings screen.
type RankingState struct {
	Market    stockweather.Market
	Tab       Tab
	Limit     int
	Loading   bool
	Rankings  *stockweather.Rankings
	ErrBanner string // non-empty while the last fetch failed
	FetchedAt time.Time
}

// RankingView owns the rankings screen state. A fetch failure keeps prior
// data visible with an error banner; only a successful fetch replaces data,
// and always wholesale.
type RankingView struct {
	mu     sync.Mutex
	market stockweather.Market
	tab    Tab
	limit  int

	gen     int
	cancel  context.CancelFunc
	loading bool

	data    *stockweather.Rankings
	fetched time.Time
	banner  string
}

// NewRankingView creates a view with the given initial filter.
func NewRankingView(market stockweather.Market, limit int) *RankingView {
	return &RankingView{market: market, limit: limit}
}

// Begin starts a new fetch: any in-flight fetch is cancelled and its result
// will be dropped. Returns the fetch generation and the context to fetch
// under.
func (v *RankingView) Begin(parent context.Context) (int, context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	v.cancel = cancel
	v.gen++
	v.loading = true
	return v.gen, ctx
}

// Apply records a fetch outcome. Results from superseded generations are
// dropped. Reports whether the view changed.
func (v *RankingView) Apply(gen int, data *stockweather.Rankings, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.loading = false
	if err != nil {
		v.banner = banner(err)
		return true
	}
	v.data = data
	v.fetched = time.Now()
	v.banner = ""
	return true
}

// SetMarket switches the market filter. Reports whether it changed, in which
// case the caller starts a fresh fetch.
func (v *RankingView) SetMarket(m stockweather.Market) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if m == v.market {
		return false
	}
	v.market = m
	return true
}

// Market returns the current market filter.
func (v *RankingView) Market() stockweather.Market {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.market
}

// ToggleTab flips between the gainers and losers tab. Tab switches render
// from the held snapshot; they never trigger a fetch.
func (v *RankingView) ToggleTab() Tab {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.tab == TabGainers {
		v.tab = TabLosers
	} else {
		v.tab = TabGainers
	}
	return v.tab
}

// Limit returns the rankings limit.
func (v *RankingView) Limit() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.limit
}

// Snapshot returns a copy of the screen state for rendering.
func (v *RankingView) Snapshot() RankingState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := RankingState{
		Market:    v.market,
		Tab:       v.tab,
		Limit:     v.limit,
		Loading:   v.loading,
		ErrBanner: v.banner,
		FetchedAt: v.fetched,
	}
	if v.data != nil {
		d := *v.data
		d.TopGainers = append([]stockweather.Ranking(nil), v.data.TopGainers...)
		d.TopLosers = append([]stockweather.Ranking(nil), v.data.TopLosers...)
		s.Rankings = &d
	}
	return s
}

// banner translates a fetch error to user-facing banner text.
func banner(err error) string {
	var apiErr *stockweather.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return err.Error()
}
