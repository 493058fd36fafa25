package fetch

import (
	"context"
	"fmt"

	"github.com/piquette/finance-go/equity"
)

// Quote fetches a spot quote for symbol via the Yahoo quote API. The PE
// ratio is derived from trailing twelve-month EPS when available, falling
// back to the upstream forward PE.
func (f *YahooFetcher) Quote(ctx context.Context, symbol string) (*Quote, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q, err := equity.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if q == nil {
		// The upstream reports unknown symbols as an empty result, not an error.
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	out := &Quote{
		Symbol:    q.Symbol,
		Name:      q.ShortName,
		Price:     q.RegularMarketPrice,
		PrevClose: q.RegularMarketPreviousClose,
		Volume:    int64(q.RegularMarketVolume),
		MarketCap: q.MarketCap,
	}
	switch {
	case q.RegularMarketPrice > 0 && q.EpsTrailingTwelveMonths > 0:
		out.PERatio = q.RegularMarketPrice / q.EpsTrailingTwelveMonths
		out.HasPE = true
	case q.ForwardPE > 0:
		out.PERatio = q.ForwardPE
		out.HasPE = true
	}
	return out, nil
}
