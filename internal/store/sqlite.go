package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"StockDash/internal/model"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteCache persists fetched bars to a SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			symbol     TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, start_date, end_date)
		)`,
		`CREATE TABLE IF NOT EXISTS bars (
			symbol     TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			ts         INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			PRIMARY KEY (symbol, start_date, end_date, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_fetch ON bars(symbol, start_date, end_date)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func keyArgs(k Key) (string, string, string) {
	return k.Symbol, k.Start.Format(dateLayout), k.End.Format(dateLayout)
}

// Load returns the bars of key when the stored fetch is younger than maxAge.
func (c *SQLiteCache) Load(ctx context.Context, key Key, maxAge time.Duration) ([]model.OHLCV, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sym, start, end := keyArgs(key)
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM fetches WHERE symbol = ? AND start_date = ? AND end_date = ?`,
		sym, start, end).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query fetch: %w", err)
	}
	if maxAge > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM bars
		 WHERE symbol = ? AND start_date = ? AND end_date = ? ORDER BY ts`,
		sym, start, end)
	if err != nil {
		return nil, false, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var o, h, l, cl, v sql.NullFloat64
		if err := rows.Scan(&ts, &o, &h, &l, &cl, &v); err != nil {
			return nil, false, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   nullable(o),
			High:   nullable(h),
			Low:    nullable(l),
			Close:  nullable(cl),
			Volume: nullable(v),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, true, nil
}

// Save replaces the bars stored under key.
func (c *SQLiteCache) Save(ctx context.Context, key Key, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sym, start, end := keyArgs(key)
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bars WHERE symbol = ? AND start_date = ? AND end_date = ?`, sym, start, end); err != nil {
		return fmt.Errorf("clear bars: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bars
		(symbol, start_date, end_date, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, sym, start, end, b.Time.Unix(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO fetches (symbol, start_date, end_date, fetched_at)
		VALUES (?,?,?,?)
		ON CONFLICT(symbol, start_date, end_date) DO UPDATE SET fetched_at = excluded.fetched_at`,
		sym, start, end, c.now().Unix()); err != nil {
		return fmt.Errorf("upsert fetch: %w", err)
	}
	return tx.Commit()
}

// SQLite stores NaN as NULL.
func nullable(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
