// Package sched runs the background jobs: periodic rankings refresh per
// market, the hourly cache-expiry sweep, and the daily full-market analysis.
package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"stockweather/internal/analyzer"
	"stockweather/internal/config"
	"stockweather/internal/model"
	"stockweather/internal/store"
)

// Scheduler manages all cron jobs. Expressions carry a seconds field.
type Scheduler struct {
	cron     *cron.Cron
	analyzer *analyzer.Analyzer
	cache    *store.Cache
	limit    int
	ctx      context.Context
	log      *slog.Logger
}

// New creates a Scheduler. limit is the per-side row count the refresh job
// precomputes rankings for.
func New(ctx context.Context, a *analyzer.Analyzer, c *store.Cache, limit int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		analyzer: a,
		cache:    c,
		limit:    limit,
		ctx:      ctx,
		log:      slog.Default().With("component", "scheduler"),
	}
}

// RegisterAll wires the refresh, cleanup, and full-analysis jobs.
func (s *Scheduler) RegisterAll(cfg config.Schedule) error {
	if _, err := s.cron.AddFunc(cfg.RefreshCron, s.refreshRankings); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.CleanupCron, s.cleanupCache); err != nil {
		return fmt.Errorf("register cleanup job: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.FullCron, s.runFullAnalysis); err != nil {
		return fmt.Errorf("register full-analysis job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RefreshNow runs the rankings refresh immediately, for cache warm-up at
// server start.
func (s *Scheduler) RefreshNow() {
	s.refreshRankings()
}

func (s *Scheduler) refreshRankings() {
	for _, m := range []model.Market{model.MarketAll, model.MarketKR, model.MarketUS} {
		if err := s.analyzer.Refresh(s.ctx, m, s.limit); err != nil {
			s.log.Error("rankings refresh failed", "market", m, "error", err)
			continue
		}
		s.log.Info("rankings refreshed", "market", m)
	}
}

func (s *Scheduler) cleanupCache() {
	if _, err := s.cache.CleanupExpired(s.ctx); err != nil {
		s.log.Error("cache cleanup failed", "error", err)
	}
}

func (s *Scheduler) runFullAnalysis() {
	if _, err := s.analyzer.RunFull(s.ctx); err != nil {
		if errors.Is(err, analyzer.ErrRunInProgress) {
			s.log.Warn("full-market analysis skipped, run already live")
			return
		}
		s.log.Error("full-market analysis failed", "error", err)
	}
}
