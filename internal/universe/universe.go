// Package universe holds the tradable-stock reference set: ticker, name,
// sector, market, upstream symbol, and baseline fundamentals. The built-in
// seed covers the KR majors and a slice of US large caps; everything else in
// the service (rankings, search, sectors) keys off this set.
package universe

import (
	"sort"

	"stockweather/internal/model"
)

// Entry is one universe member. YahooSymbol is the symbol the chart API
// expects, which for KR stocks carries the exchange suffix.
type Entry struct {
	model.Listing
	YahooSymbol  string
	Fundamentals model.Fundamentals
}

// Universe is an immutable lookup set over entries.
type Universe struct {
	entries  []Entry
	byTicker map[string]int
}

// New builds a universe from the given entries. Later duplicates of a
// ticker are dropped.
func New(entries []Entry) *Universe {
	u := &Universe{byTicker: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := u.byTicker[e.Ticker]; dup {
			continue
		}
		u.byTicker[e.Ticker] = len(u.entries)
		u.entries = append(u.entries, e)
	}
	return u
}

// Default returns the built-in seed universe.
func Default() *Universe {
	return New(seed)
}

// Lookup finds an entry by ticker.
func (u *Universe) Lookup(ticker string) (Entry, bool) {
	i, ok := u.byTicker[ticker]
	if !ok {
		return Entry{}, false
	}
	return u.entries[i], true
}

// Market returns the entries for one market filter in seed order.
func (u *Universe) Market(m model.Market) []Entry {
	if m == model.MarketAll {
		out := make([]Entry, len(u.entries))
		copy(out, u.entries)
		return out
	}
	var out []Entry
	for _, e := range u.entries {
		if e.Listing.Market == m {
			out = append(out, e)
		}
	}
	return out
}

// Sectors returns the sorted distinct sector names.
func (u *Universe) Sectors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range u.entries {
		if _, ok := seen[e.Sector]; ok {
			continue
		}
		seen[e.Sector] = struct{}{}
		out = append(out, e.Sector)
	}
	sort.Strings(out)
	return out
}

// Listings returns the bare listing rows for one market, for the list and
// search endpoints.
func (u *Universe) Listings(m model.Market) []model.Listing {
	entries := u.Market(m)
	out := make([]model.Listing, len(entries))
	for i, e := range entries {
		out[i] = e.Listing
	}
	return out
}

// Len reports the number of entries.
func (u *Universe) Len() int { return len(u.entries) }
