package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"stockweather/internal/model"
)

// JobStatus is the full-market job's lifecycle state.
type JobStatus string

const (
	JobIdle       JobStatus = "idle"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

// ErrRunInProgress reports that a full-market run is already live.
var ErrRunInProgress = errors.New("full-market analysis already in progress")

// ResultRetention is how long a completed result satisfies a new trigger
// without rerunning the analysis.
const ResultRetention = 10 * time.Minute

const fullResultKey = "full_market_analysis"

// Full runs rank wider than the interactive endpoint: twenty picks, ten to
// avoid.
const (
	fullGainers = 20
	fullLosers  = 10
)

// FullResult is the outcome of one full-market analysis run.
type FullResult struct {
	AnalyzedCount int                   `json:"analyzed_count"`
	Rankings      model.RankingsData    `json:"rankings"`
	Sectors       []model.SectorWeather `json:"sectors"`
	Summary       MarketSummary         `json:"market_summary"`
	CompletedAt   time.Time             `json:"completed_at"`
}

// Trigger reports how a full-run request was handled. Exactly one of
// Started, Running, or Result is set.
type Trigger struct {
	Started bool          // a new background run was kicked off
	Running bool          // a run was already in flight
	Result  *FullResult   // fresh retained result served instead of a run
	Age     time.Duration // result age when served from retention
}

// JobInfo is the job state reported on the status endpoint.
type JobInfo struct {
	Status          JobStatus
	LastCompletedAt time.Time
	AnalyzedCount   int
}

// fullJob is the mutex-guarded single-flight state of the background run.
type fullJob struct {
	mu            sync.Mutex
	running       bool
	result        *FullResult
	lastCompleted time.Time
	analyzed      int
}

// StartFull handles a full-market trigger: serve a result fresher than the
// retention window, report an in-flight run, or start one in the background.
func (a *Analyzer) StartFull(ctx context.Context) Trigger {
	a.job.mu.Lock()
	if a.job.running {
		a.job.mu.Unlock()
		return Trigger{Running: true}
	}
	if r := a.retainedResult(ctx); r != nil {
		if age := time.Since(r.CompletedAt); age < ResultRetention {
			a.job.mu.Unlock()
			return Trigger{Result: r, Age: age}
		}
	}
	a.job.running = true
	a.job.mu.Unlock()

	// The run outlives the triggering request.
	go a.completeRun(context.Background(), time.Now())
	return Trigger{Started: true}
}

// RunFull performs a full-market run synchronously. The scheduler and the
// one-shot daily command use this; the HTTP trigger goes through StartFull.
func (a *Analyzer) RunFull(ctx context.Context) (*FullResult, error) {
	a.job.mu.Lock()
	if a.job.running {
		a.job.mu.Unlock()
		return nil, ErrRunInProgress
	}
	a.job.running = true
	a.job.mu.Unlock()

	return a.completeRun(ctx, time.Now())
}

// Status reports the job state. A process that has never run (or finished
// loading a cached result) reports idle.
func (a *Analyzer) Status() JobInfo {
	a.job.mu.Lock()
	defer a.job.mu.Unlock()
	switch {
	case a.job.running:
		return JobInfo{Status: JobInProgress, LastCompletedAt: a.job.lastCompleted, AnalyzedCount: a.job.analyzed}
	case !a.job.lastCompleted.IsZero():
		return JobInfo{Status: JobCompleted, LastCompletedAt: a.job.lastCompleted, AnalyzedCount: a.job.analyzed}
	default:
		return JobInfo{Status: JobIdle}
	}
}

// retainedResult returns the last completed result, loading it from the
// cache after a restart. Callers hold job.mu.
func (a *Analyzer) retainedResult(ctx context.Context) *FullResult {
	if a.job.result != nil {
		return a.job.result
	}
	var r FullResult
	hit, err := a.cache.Get(ctx, fullResultKey, &r)
	if err != nil {
		a.log.Warn("cache read failed", "key", fullResultKey, "error", err)
		return nil
	}
	if !hit {
		return nil
	}
	a.job.result = &r
	a.job.lastCompleted = r.CompletedAt
	a.job.analyzed = r.AnalyzedCount
	return &r
}

// completeRun executes the analysis and settles the job state. Callers have
// already marked the job running.
func (a *Analyzer) completeRun(ctx context.Context, started time.Time) (*FullResult, error) {
	a.log.Info("full-market analysis started", "stocks", a.universe.Len())

	result, err := a.buildFull(ctx)

	a.job.mu.Lock()
	a.job.running = false
	if err == nil {
		a.job.result = result
		a.job.lastCompleted = result.CompletedAt
		a.job.analyzed = result.AnalyzedCount
	}
	a.job.mu.Unlock()

	if err != nil {
		a.log.Error("full-market analysis failed", "error", err)
		return nil, err
	}
	a.log.Info("full-market analysis completed",
		"stocks", result.AnalyzedCount,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return result, nil
}

// buildFull analyzes the whole universe fresh (no cache read), assembles the
// result, refreshes the serving caches, and writes the daily snapshot.
func (a *Analyzer) buildFull(ctx context.Context) (*FullResult, error) {
	rows, err := a.fanOut(ctx, a.universe.Market(model.MarketAll))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sectors := sectorize(rows)
	result := &FullResult{
		AnalyzedCount: len(rows),
		Rankings:      *splitRankings(rows, fullGainers, fullLosers, now),
		Sectors:       sectors,
		Summary:       computeSummary(rows, sectors, now),
		CompletedAt:   now,
	}

	if err := a.cache.Set(ctx, fullResultKey, result, a.fullTTL); err != nil {
		a.log.Warn("cache write failed", "key", fullResultKey, "error", err)
	}
	if err := a.cache.Set(ctx, rowsKey(model.MarketAll), rows, a.rankingsTTL); err != nil {
		a.log.Warn("cache write failed", "key", rowsKey(model.MarketAll), "error", err)
	}
	if err := a.writeSnapshot(ctx, rows, now); err != nil {
		a.log.Warn("snapshot write failed", "error", err)
	}
	return result, nil
}

// writeSnapshot persists the run's per-ticker outcomes to the daily
// Parquet file.
func (a *Analyzer) writeSnapshot(ctx context.Context, rows []model.StockRanking, now time.Time) error {
	date := now.Format("2006-01-02")
	preds := make([]model.Prediction, 0, len(rows))
	for _, r := range rows {
		market := ""
		if e, ok := a.universe.Lookup(r.Ticker); ok {
			market = string(e.Listing.Market)
		}
		preds = append(preds, model.Prediction{
			Date:             date,
			Ticker:           r.Ticker,
			Market:           market,
			Probability:      r.Probability,
			ExpectedReturn:   r.ExpectedReturn,
			FundamentalScore: r.FundamentalScore,
			Confidence:       r.Confidence,
		})
	}
	return a.snapshots.WriteSnapshot(ctx, date, preds)
}
