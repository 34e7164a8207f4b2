package ledger

// Package ledger keeps a sqlite record of pipeline runs and their
// permanently failed pages, so a later invocation can target exactly the
// pages a previous run could not fetch.

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Ledger struct {
	db *sql.DB
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID          string
	Term        string
	Limit       int
	Destination string
	State       string
	Written     int
	Skipped     int
	PagesFailed int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// FailedPage is a page a run could not fetch after retries.
type FailedPage struct {
	Offset int
	Limit  int
	Cause  string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    term TEXT,
    record_limit INTEGER,
    destination TEXT,
    state TEXT,
    written INTEGER,
    skipped INTEGER,
    pages_failed INTEGER,
    started_at TEXT,
    finished_at TEXT
);
CREATE TABLE IF NOT EXISTS failed_pages (
    run_id TEXT,
    page_offset INTEGER,
    page_limit INTEGER,
    cause TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_destination ON runs(destination, finished_at);
`

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordRun stores a completed run and its failed pages. A missing run ID is
// assigned.
func (l *Ledger) RecordRun(r Run, failed []FailedPage) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	tx, err := l.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, term, record_limit, destination, state, written, skipped, pages_failed, started_at, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Term, r.Limit, r.Destination, r.State, r.Written, r.Skipped, len(failed),
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", err
	}
	for _, p := range failed {
		if _, err := tx.Exec(
			`INSERT INTO failed_pages (run_id, page_offset, page_limit, cause) VALUES (?, ?, ?, ?)`,
			r.ID, p.Offset, p.Limit, p.Cause,
		); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// LastRun returns the most recent run recorded for the destination.
func (l *Ledger) LastRun(destination string) (Run, bool, error) {
	row := l.db.QueryRow(
		`SELECT id, term, record_limit, destination, state, written, skipped, pages_failed, started_at, finished_at
         FROM runs WHERE destination = ? ORDER BY finished_at DESC LIMIT 1`, destination)
	var r Run
	var started, finished string
	err := row.Scan(&r.ID, &r.Term, &r.Limit, &r.Destination, &r.State, &r.Written, &r.Skipped, &r.PagesFailed, &started, &finished)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return r, true, nil
}

// FailedPages returns the failed pages of the most recent run for the
// destination, in offset order. Empty when the last run completed cleanly or
// no run exists.
func (l *Ledger) FailedPages(destination string) ([]FailedPage, error) {
	last, ok, err := l.LastRun(destination)
	if err != nil || !ok {
		return nil, err
	}
	rows, err := l.db.Query(
		`SELECT page_offset, page_limit, cause FROM failed_pages WHERE run_id = ? ORDER BY page_offset`, last.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FailedPage
	for rows.Next() {
		var p FailedPage
		if err := rows.Scan(&p.Offset, &p.Limit, &p.Cause); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
