// Package store persists analysis results: a SQLite TTL cache for serving
// hot payloads and Parquet snapshot files for daily full-market runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Cache is a SQLite-backed TTL cache for JSON payloads. Every value is
// stored marshalled; readers get misses for expired rows even before the
// cleanup sweep removes them.
type Cache struct {
	db  *sql.DB
	mu  sync.Mutex
	log *slog.Logger
}

// NewCache opens (or creates) the cache database at path and runs the
// schema migration.
func NewCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API reads don't block the refresh job's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, log: slog.Default().With("component", "cache")}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c.log.Info("cache opened", "path", path)
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache(expires_at)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// Set stores value under key with the given lifetime, replacing any
// previous entry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache (key, value, expires_at, created_at) VALUES (?,?,?,?)`,
		key, string(data), now.Add(ttl).Unix(), now.Unix(),
	)
	return err
}

// Get loads the entry under key into dest. It reports whether a live entry
// was found; an expired row counts as a miss and is dropped on the way out.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if time.Now().Unix() > expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Delete removes the entry under key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	return err
}

// GetPattern returns all live entries whose keys match pattern, with *
// as the wildcard (rankings_* etc). Values come back raw for callers that
// only need key counts or mixed payload types.
func (c *Cache) GetPattern(ctx context.Context, pattern string) (map[string]json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM cache WHERE key LIKE ? AND expires_at > ?`,
		strings.ReplaceAll(pattern, "*", "%"), time.Now().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		results[key] = json.RawMessage(value)
	}
	return results, rows.Err()
}

// CleanupExpired deletes every expired row and returns how many went.
func (c *Cache) CleanupExpired(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.log.Info("expired cache entries removed", "count", n)
	}
	return n, nil
}

// Healthy reports whether the database answers a trivial query.
func (c *Cache) Healthy(ctx context.Context) bool {
	var one int
	if err := c.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		c.log.Error("cache health check failed", "error", err)
		return false
	}
	return true
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	c.log.Info("closing cache")
	return c.db.Close()
}
