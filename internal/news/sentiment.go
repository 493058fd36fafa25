package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stockweather/internal/model"
	"stockweather/internal/universe"
)

// Keyword classes graded by how strongly a headline moves the score.
// Matching is case-insensitive substring, once per keyword per article.
var positiveKeywords = []keywordClass{
	{2, []string{"record high", "all-time high", "surge", "soars", "beats expectations", "earnings surprise", "major contract", "acquisition", "breakthrough"}},
	{1, []string{"rises", "gains", "upgrade", "growth", "recovery", "rebound", "rally", "bullish", "optimistic", "expands"}},
	{0.5, []string{"edges up", "steady", "interest", "watchlist"}},
}

var negativeKeywords = []keywordClass{
	{2, []string{"plunges", "crash", "collapse", "bankruptcy", "delisting", "lawsuit", "recall", "fraud", "scandal"}},
	{1, []string{"falls", "drops", "declines", "downgrade", "slump", "bearish", "concern", "warning", "misses"}},
	{0.5, []string{"dips", "profit-taking", "correction", "pauses"}},
}

type keywordClass struct {
	weight float64
	words  []string
}

// ScoreText returns the signed keyword score of one text: positive class
// weights added, negative subtracted, each keyword counted at most once.
func ScoreText(text string) float64 {
	lower := strings.ToLower(text)
	var score float64
	for _, class := range positiveKeywords {
		for _, w := range class.words {
			if strings.Contains(lower, w) {
				score += class.weight
			}
		}
	}
	for _, class := range negativeKeywords {
		for _, w := range class.words {
			if strings.Contains(lower, w) {
				score -= class.weight
			}
		}
	}
	return score
}

// Analyze sums per-article scores and labels the total: >= 2 positive,
// <= -2 negative, neutral between. No articles reads as neutral.
func Analyze(articles []Article) model.NewsSentiment {
	var total float64
	for _, a := range articles {
		total += ScoreText(a.Headline + " " + a.Content)
	}

	label := "neutral"
	switch {
	case total >= 2:
		label = "positive"
	case total <= -2:
		label = "negative"
	}

	return model.NewsSentiment{
		Score:        total,
		Label:        label,
		ArticleCount: len(articles),
	}
}

// Analyzer fetches recent articles for a listing and scores them.
type Analyzer struct {
	alpaca *marketdata.Client // nil without credentials
	window time.Duration
	log    *slog.Logger
}

// NewAnalyzer creates an Analyzer looking back over the last week of
// headlines. Empty credentials route everything through Google News.
func NewAnalyzer(apiKey, apiSecret string) *Analyzer {
	a := &Analyzer{
		window: 7 * 24 * time.Hour,
		log:    slog.Default().With("component", "news"),
	}
	if apiKey != "" && apiSecret != "" {
		a.alpaca = marketdata.NewClient(marketdata.ClientOpts{APIKey: apiKey, APISecret: apiSecret})
	}
	return a
}

// Sentiment fetches and scores recent headlines for the entry.
func (a *Analyzer) Sentiment(ctx context.Context, e universe.Entry) (*model.NewsSentiment, error) {
	end := time.Now()
	start := end.Add(-a.window)

	var articles []Article
	var err error
	if e.Market == model.MarketUS && a.alpaca != nil {
		articles, err = FetchAlpacaNews(ctx, a.alpaca, e.Ticker, start, end)
	} else {
		// Company names query better than suffixed Korean tickers.
		query := e.Ticker
		if e.Market == model.MarketKR {
			query = e.Name
		}
		articles, err = FetchGoogleNews(ctx, query, start, end)
	}
	if err != nil {
		return nil, err
	}

	s := Analyze(articles)
	a.log.Debug("sentiment scored", "ticker", e.Ticker, "articles", s.ArticleCount, "score", s.Score, "label", s.Label)
	return &s, nil
}
