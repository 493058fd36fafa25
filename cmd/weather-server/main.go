package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockweather/internal/analyzer"
	"stockweather/internal/api"
	"stockweather/internal/config"
	"stockweather/internal/fetch"
	"stockweather/internal/news"
	"stockweather/internal/sched"
	"stockweather/internal/search"
	"stockweather/internal/store"
	"stockweather/internal/universe"
	"stockweather/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/stockweather.yaml"
	if p := os.Getenv("STOCKWEATHER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Setup logging. An optional log file is teed with stdout.
	var w io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer logFile.Close()
		w = io.MultiWriter(os.Stdout, logFile)
	}
	var logger *slog.Logger
	if cfg.Logging.Format == "text" {
		logger = util.NewTextLogger(w, cfg.Logging.Level)
	} else {
		logger = util.NewJSONLogger(w, cfg.Logging.Level)
	}
	util.SetDefault(logger)

	// Stores.
	cache, err := store.NewCache(cfg.Storage.CachePath)
	if err != nil {
		log.Fatalf("opening cache: %v", err)
	}
	defer cache.Close()
	snapshots := store.NewSnapshotStore(cfg.Storage.DataDir)

	// Universe and search index.
	uni := universe.Default()
	idx, err := search.New(uni)
	if err != nil {
		log.Fatalf("building search index: %v", err)
	}
	defer idx.Close()

	// Fetchers. Alpaca is optional; without credentials US bars come from
	// the Yahoo chart API and news sentiment stays off.
	yahoo := fetch.NewYahooFetcher(
		cfg.Fetch.YahooRatePerMin,
		cfg.Fetch.RetryAttempts,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
	)
	sources := []string{"yahoo"}
	var alpaca fetch.BarFetcher
	var sentiment analyzer.SentimentSource
	if cfg.Fetch.Alpaca.APIKey != "" && cfg.Fetch.Alpaca.APISecret != "" {
		alpaca = fetch.NewAlpacaFetcher(cfg.Fetch.Alpaca.APIKey, cfg.Fetch.Alpaca.APISecret, cfg.Fetch.Alpaca.DataURL)
		sentiment = news.NewAnalyzer(cfg.Fetch.Alpaca.APIKey, cfg.Fetch.Alpaca.APISecret)
		sources = append(sources, "alpaca")
	}
	router := fetch.NewRouter(yahoo, alpaca, yahoo)

	a := analyzer.New(analyzer.Options{
		Fetcher:     router,
		Cache:       cache,
		Snapshots:   snapshots,
		Universe:    uni,
		News:        sentiment,
		NewsEnabled: sentiment != nil,
		Workers:     cfg.Analysis.Workers,
		RankingsTTL: time.Duration(cfg.Analysis.RankingsTTLSeconds) * time.Second,
		DetailTTL:   time.Duration(cfg.Analysis.DetailTTLSeconds) * time.Second,
		FullTTL:     time.Duration(cfg.Analysis.FullTTLSeconds) * time.Second,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Background jobs, plus a warm-up refresh so the first request does not
	// pay the full fan-out.
	scheduler := sched.New(ctx, a, cache, cfg.Analysis.RankingLimit)
	if err := scheduler.RegisterAll(cfg.Schedule); err != nil {
		log.Fatalf("registering jobs: %v", err)
	}
	scheduler.Start()
	go scheduler.RefreshNow()

	// Start HTTP server.
	srv := api.NewServer(a, cache, snapshots, idx, sources)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("stockweather server listening", "addr", httpServer.Addr, "sources", sources)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down stockweather server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	scheduler.Stop()
}
