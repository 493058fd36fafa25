// Package search indexes the stock universe for free-text lookup: exact
// and prefix ticker matches rank above name matches, which rank above
// sector matches.
package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"stockweather/internal/model"
	"stockweather/internal/universe"
)

// Index is an in-memory bleve index over universe listings. The universe
// is static per process, so the index is built once at startup.
type Index struct {
	index bleve.Index
}

// document is the indexed shape of one listing.
type document struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	Market string `json:"market"`
}

// New builds an in-memory index over every listing in the universe.
func New(u *universe.Universe) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := idx.NewBatch()
	for _, l := range u.Listings(model.MarketAll) {
		doc := document{
			Ticker: l.Ticker,
			Name:   l.Name,
			Sector: l.Sector,
			Market: string(l.Market),
		}
		if err := batch.Index(l.Ticker, doc); err != nil {
			idx.Close()
			return nil, fmt.Errorf("index %s: %w", l.Ticker, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("execute batch: %w", err)
	}

	return &Index{index: idx}, nil
}

// Search returns listings ranked by relevance, at most limit of them.
func (ix *Index) Search(query string, limit int) ([]model.Listing, error) {
	if limit <= 0 {
		limit = 10
	}
	lower := strings.ToLower(query)

	exact := bleve.NewTermQuery(lower)
	exact.SetField("ticker")
	exact.SetBoost(10.0)

	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("ticker")
	prefix.SetBoost(5.0)

	nameMatch := bleve.NewMatchQuery(query)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	nameWild := bleve.NewWildcardQuery("*" + lower + "*")
	nameWild.SetField("name")
	nameWild.SetBoost(1.5)

	sectorMatch := bleve.NewMatchQuery(query)
	sectorMatch.SetField("sector")
	sectorMatch.SetBoost(1.0)

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(exact, prefix, nameMatch, nameWild, sectorMatch))
	req.Fields = []string{"ticker", "name", "sector", "market"}
	req.Size = limit

	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	listings := make([]model.Listing, 0, len(res.Hits))
	for _, hit := range res.Hits {
		listings = append(listings, model.Listing{
			Ticker: fieldString(hit.Fields, "ticker"),
			Name:   fieldString(hit.Fields, "name"),
			Sector: fieldString(hit.Fields, "sector"),
			Market: model.Market(fieldString(hit.Fields, "market")),
		})
	}
	return listings, nil
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
