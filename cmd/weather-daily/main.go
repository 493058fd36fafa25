package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockweather/internal/analyzer"
	"stockweather/internal/config"
	"stockweather/internal/fetch"
	"stockweather/internal/store"
	"stockweather/internal/universe"
	"stockweather/internal/util"
)

func main() {
	cfgPath := "config/stockweather.yaml"
	if p := os.Getenv("STOCKWEATHER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	util.SetDefault(util.NewTextLogger(os.Stderr, cfg.Logging.Level))

	cache, err := store.NewCache(cfg.Storage.CachePath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer cache.Close()

	uni := universe.Default()
	yahoo := fetch.NewYahooFetcher(
		cfg.Fetch.YahooRatePerMin,
		cfg.Fetch.RetryAttempts,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
	)
	var alpaca fetch.BarFetcher
	if cfg.Fetch.Alpaca.APIKey != "" && cfg.Fetch.Alpaca.APISecret != "" {
		alpaca = fetch.NewAlpacaFetcher(cfg.Fetch.Alpaca.APIKey, cfg.Fetch.Alpaca.APISecret, cfg.Fetch.Alpaca.DataURL)
	}

	a := analyzer.New(analyzer.Options{
		Fetcher:     fetch.NewRouter(yahoo, alpaca, yahoo),
		Cache:       cache,
		Snapshots:   store.NewSnapshotStore(cfg.Storage.DataDir),
		Universe:    uni,
		Workers:     cfg.Analysis.Workers,
		RankingsTTL: time.Duration(cfg.Analysis.RankingsTTLSeconds) * time.Second,
		DetailTTL:   time.Duration(cfg.Analysis.DetailTTLSeconds) * time.Second,
		FullTTL:     time.Duration(cfg.Analysis.FullTTLSeconds) * time.Second,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	fmt.Printf("analyzing %d stocks\n", uni.Len())

	result, err := a.RunFull(ctx)
	if err != nil {
		log.Fatalf("full-market analysis: %v", err)
	}

	fmt.Printf("analyzed %d stocks in %s\n", result.AnalyzedCount, time.Since(start).Round(time.Millisecond))
	fmt.Printf("market sentiment %.1f (%s), %d up / %d flat / %d down\n",
		result.Summary.SentimentIndex, result.Summary.Trend,
		result.Summary.PositiveStocks, result.Summary.NeutralStocks, result.Summary.NegativeStocks)
}
