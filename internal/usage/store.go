// Package usage records per-trim token usage and maps it onto daily
// budget zones. Only usage accounting is persisted here — never
// conversation content.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists token usage rows in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the usage database at path.
// Driver name is "sqlite" (modernc.org/sqlite, not mattn/go-sqlite3).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal=WAL")
	if err != nil {
		return nil, fmt.Errorf("usage.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("usage.Open: ping: %w", err)
	}
	// Limit to 1 writer at a time to avoid SQLITE_BUSY in WAL mode.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const ddlTrimUsage = `
CREATE TABLE IF NOT EXISTS trim_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	compress_ratio REAL NOT NULL,
	date TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trim_usage_date ON trim_usage(date);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(ddlTrimUsage); err != nil {
		return fmt.Errorf("usage.migrate: %w", err)
	}
	return nil
}

// Record saves one trim's token usage.
func (s *Store) Record(ctx context.Context, session, model string, inputTokens, outputTokens int, compressRatio float64) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trim_usage (session, model, input_tokens, output_tokens, compress_ratio, date, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		session, model, inputTokens, outputTokens, compressRatio,
		now.Format("2006-01-02"), now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("usage.Record: %w", err)
	}
	return nil
}

// DailyTotal returns the tokens recorded across all sessions on date
// (YYYY-MM-DD).
func (s *Store) DailyTotal(ctx context.Context, date string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(input_tokens + output_tokens), 0)
		FROM trim_usage WHERE date=?`, date,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("usage.DailyTotal: %w", err)
	}
	return total, nil
}

// DayTotal is one day's aggregated usage.
type DayTotal struct {
	Date         string
	InputTokens  int
	OutputTokens int
	Trims        int
}

// Daily returns per-day totals for the most recent n days that have any
// usage, newest first.
func (s *Store) Daily(ctx context.Context, n int) ([]DayTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, SUM(input_tokens), SUM(output_tokens), COUNT(*)
		FROM trim_usage GROUP BY date ORDER BY date DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("usage.Daily: %w", err)
	}
	defer rows.Close()

	var days []DayTotal
	for rows.Next() {
		var d DayTotal
		if err := rows.Scan(&d.Date, &d.InputTokens, &d.OutputTokens, &d.Trims); err != nil {
			return nil, fmt.Errorf("usage.Daily: scan: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
