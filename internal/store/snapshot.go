package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"stockweather/internal/model"
)

// SnapshotStore persists one Parquet file of predictions per full-market
// run day. Rewrites within a day merge by ticker, newest run winning.
type SnapshotStore struct {
	DataDir string
}

// NewSnapshotStore creates a SnapshotStore rooted at the given data directory.
func NewSnapshotStore(dataDir string) *SnapshotStore {
	return &SnapshotStore{DataDir: dataDir}
}

// PredictionRecord is the Parquet schema for one stored prediction.
type PredictionRecord struct {
	Date             string  `parquet:"date"`
	Ticker           string  `parquet:"ticker"`
	Market           string  `parquet:"market"`
	Probability      float64 `parquet:"probability"`
	ExpectedReturn   float64 `parquet:"expected_return"`
	FundamentalScore float64 `parquet:"fundamental_score"`
	Confidence       float64 `parquet:"confidence"`
}

// WriteSnapshot writes predictions for one day, merged over any existing
// file for that day. Layout: <DataDir>/snapshots/<YYYY-MM-DD>.parquet
func (s *SnapshotStore) WriteSnapshot(_ context.Context, date string, preds []model.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	records := make([]PredictionRecord, 0, len(preds))
	for _, p := range preds {
		records = append(records, PredictionRecord{
			Date:             date,
			Ticker:           p.Ticker,
			Market:           p.Market,
			Probability:      p.Probability,
			ExpectedReturn:   p.ExpectedReturn,
			FundamentalScore: p.FundamentalScore,
			Confidence:       p.Confidence,
		})
	}

	path := s.snapshotPath(date)
	existing, _ := readParquetFile[PredictionRecord](path)
	merged := mergePredictionRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", date, err)
	}
	return nil
}

// ReadSnapshot reads the predictions stored for one day.
func (s *SnapshotStore) ReadSnapshot(_ context.Context, date string) ([]model.Prediction, error) {
	records, err := readParquetFile[PredictionRecord](s.snapshotPath(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", date, err)
	}

	preds := make([]model.Prediction, 0, len(records))
	for _, r := range records {
		preds = append(preds, model.Prediction{
			Date:             r.Date,
			Ticker:           r.Ticker,
			Market:           r.Market,
			Probability:      r.Probability,
			ExpectedReturn:   r.ExpectedReturn,
			FundamentalScore: r.FundamentalScore,
			Confidence:       r.Confidence,
		})
	}
	return preds, nil
}

// ListDates returns every snapshot day on disk, oldest first.
func (s *SnapshotStore) ListDates(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "snapshots"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(e.Name(), ".parquet"))
	}
	sort.Strings(dates)
	return dates, nil
}

// Latest returns the newest snapshot and its date, or nil when none exist.
func (s *SnapshotStore) Latest(ctx context.Context) ([]model.Prediction, string, error) {
	dates, err := s.ListDates(ctx)
	if err != nil || len(dates) == 0 {
		return nil, "", err
	}
	date := dates[len(dates)-1]
	preds, err := s.ReadSnapshot(ctx, date)
	return preds, date, err
}

// snapshotPath returns the file path for one snapshot day.
func (s *SnapshotStore) snapshotPath(date string) string {
	return filepath.Join(s.DataDir, "snapshots", date+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergePredictionRecords deduplicates records by ticker, preferring incoming
// over existing. Results are sorted by ticker.
func mergePredictionRecords(existing, incoming []PredictionRecord) []PredictionRecord {
	seen := make(map[string]PredictionRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Ticker] = r
	}
	for _, r := range incoming {
		seen[r.Ticker] = r
	}

	merged := make([]PredictionRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Ticker < merged[j].Ticker })
	return merged
}
