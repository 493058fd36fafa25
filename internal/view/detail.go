package view

import (
	"context"
	"errors"
	"sync"

	"stockweather/pkg/stockweather"
)

// DetailState is a render snapshot of the detail screen.
type DetailState struct {
	Ticker    string
	Loading   bool
	Detail    *stockweather.StockDetail
	NotFound  bool   // unknown ticker, render the fallback screen
	ErrBanner string // any other fetch failure
}

// DetailView owns the detail screen state. Opening a ticker cancels the
// previous fetch; leaving the screen cancels outright.
type DetailView struct {
	mu     sync.Mutex
	ticker string

	gen     int
	cancel  context.CancelFunc
	loading bool

	detail   *stockweather.StockDetail
	notFound bool
	banner   string
}

// NewDetailView creates an empty detail view.
func NewDetailView() *DetailView {
	return &DetailView{}
}

// Open starts fetching a ticker, cancelling any fetch still in flight.
// Returns the fetch generation and the context to fetch under.
func (v *DetailView) Open(parent context.Context, ticker string) (int, context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	v.cancel = cancel
	v.gen++
	v.ticker = ticker
	v.loading = true
	v.detail = nil
	v.notFound = false
	v.banner = ""
	return v.gen, ctx
}

// Apply records a fetch outcome. Results from superseded generations are
// dropped. A not-found error sets the fallback state instead of a banner.
// Reports whether the view changed.
func (v *DetailView) Apply(gen int, detail *stockweather.StockDetail, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.loading = false
	if err != nil {
		if errors.Is(err, stockweather.ErrNotFound) {
			v.notFound = true
			return true
		}
		v.banner = banner(err)
		return true
	}
	v.detail = detail
	return true
}

// Close leaves the detail screen: the in-flight fetch is cancelled and the
// state cleared, so a late response lands on a dead generation.
func (v *DetailView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.gen++
	v.ticker = ""
	v.loading = false
	v.detail = nil
	v.notFound = false
	v.banner = ""
}

// Ticker returns the ticker the view is showing or loading.
func (v *DetailView) Ticker() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ticker
}

// Snapshot returns a copy of the screen state for rendering.
func (v *DetailView) Snapshot() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := DetailState{
		Ticker:    v.ticker,
		Loading:   v.loading,
		NotFound:  v.notFound,
		ErrBanner: v.banner,
	}
	if v.detail != nil {
		d := *v.detail
		d.PriceHistory = append([]stockweather.PricePoint(nil), v.detail.PriceHistory...)
		s.Detail = &d
	}
	return s
}
