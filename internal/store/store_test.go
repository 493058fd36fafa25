package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stockweather/internal/model"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheSetGet(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	in := model.RankingsData{
		TopGainers: []model.StockRanking{{Ticker: "005930", Name: "Samsung Electronics", Probability: 0.72}},
		UpdatedAt:  time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, "rankings_KR_10", in, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out model.RankingsData
	hit, err := c.Get(ctx, "rankings_KR_10", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(out.TopGainers) != 1 || out.TopGainers[0].Ticker != "005930" {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.TopGainers[0].Probability != 0.72 {
		t.Errorf("expected probability 0.72, got %v", out.TopGainers[0].Probability)
	}
}

func TestCacheMiss(t *testing.T) {
	c := testCache(t)

	var out model.RankingsData
	hit, err := c.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheExpiredEntryIsMiss(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "stale", "old", -2*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out string
	hit, err := c.Get(ctx, "stale", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected expired entry to read as a miss")
	}
}

func TestCacheDelete(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", 1, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var out int
	if hit, _ := c.Get(ctx, "k", &out); hit {
		t.Error("expected miss after delete")
	}
}

func TestCacheGetPattern(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "rankings_KR_10", 1, time.Hour)
	c.Set(ctx, "rankings_US_10", 2, time.Hour)
	c.Set(ctx, "rankings_OLD_10", 3, -2*time.Second)
	c.Set(ctx, "detail_AAPL", 4, time.Hour)

	got, err := c.GetPattern(ctx, "rankings_*")
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 live rankings keys, got %d: %v", len(got), got)
	}
	if _, ok := got["rankings_KR_10"]; !ok {
		t.Error("expected rankings_KR_10 in pattern result")
	}
	if _, ok := got["detail_AAPL"]; ok {
		t.Error("detail key should not match rankings pattern")
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "live", 1, time.Hour)
	c.Set(ctx, "dead1", 2, -2*time.Second)
	c.Set(ctx, "dead2", 3, -2*time.Second)

	n, err := c.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows removed, got %d", n)
	}

	var out int
	if hit, _ := c.Get(ctx, "live", &out); !hit {
		t.Error("cleanup should not touch live entries")
	}
}

func TestCacheHealthy(t *testing.T) {
	c := testCache(t)
	if !c.Healthy(context.Background()) {
		t.Error("expected fresh cache to be healthy")
	}
}

// ---------------------------------------------------------------------------
// Snapshot store
// ---------------------------------------------------------------------------

func pred(ticker string, prob float64) model.Prediction {
	return model.Prediction{
		Date:             "2026-08-20",
		Ticker:           ticker,
		Market:           "KR",
		Probability:      prob,
		ExpectedReturn:   1.5,
		FundamentalScore: 0.6,
		Confidence:       0.5,
	}
}

func TestSnapshotWriteRead(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())
	ctx := context.Background()

	in := []model.Prediction{pred("900010", 0.55), pred("005930", 0.72)}
	if err := s.WriteSnapshot(ctx, "2026-08-20", in); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	out, err := s.ReadSnapshot(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(out))
	}
	// Merged records come back sorted by ticker.
	if out[0].Ticker != "005930" || out[1].Ticker != "900010" {
		t.Errorf("unexpected order: %s, %s", out[0].Ticker, out[1].Ticker)
	}
	if out[0].Probability != 0.72 {
		t.Errorf("expected probability 0.72, got %v", out[0].Probability)
	}
}

func TestSnapshotMergeSameDay(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())
	ctx := context.Background()

	if err := s.WriteSnapshot(ctx, "2026-08-20", []model.Prediction{pred("005930", 0.50)}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	second := []model.Prediction{pred("005930", 0.70), pred("000660", 0.60)}
	if err := s.WriteSnapshot(ctx, "2026-08-20", second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	out, err := s.ReadSnapshot(ctx, "2026-08-20")
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected merged snapshot of 2, got %d", len(out))
	}
	for _, p := range out {
		if p.Ticker == "005930" && p.Probability != 0.70 {
			t.Errorf("expected rewrite to win, got probability %v", p.Probability)
		}
	}
}

func TestSnapshotListDatesAndLatest(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())
	ctx := context.Background()

	s.WriteSnapshot(ctx, "2026-08-19", []model.Prediction{pred("005930", 0.5)})
	s.WriteSnapshot(ctx, "2026-08-20", []model.Prediction{pred("005930", 0.6)})

	dates, err := s.ListDates(ctx)
	if err != nil {
		t.Fatalf("ListDates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-19" || dates[1] != "2026-08-20" {
		t.Fatalf("unexpected dates: %v", dates)
	}

	preds, date, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if date != "2026-08-20" {
		t.Errorf("expected latest date 2026-08-20, got %s", date)
	}
	if len(preds) != 1 || preds[0].Probability != 0.6 {
		t.Errorf("unexpected latest payload: %+v", preds)
	}
}

func TestSnapshotReadMissingDay(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())

	preds, err := s.ReadSnapshot(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("expected nil error for missing day, got %v", err)
	}
	if preds != nil {
		t.Errorf("expected nil predictions, got %v", preds)
	}
}
