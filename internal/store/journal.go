// Package store provides a SQLite-backed journal of report fetch outcomes.
// Report contents are never written; only what happened to each fetch.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rangosemfila/consumo/internal/report"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Fixed-width UTC layout so fetched_at sorts and compares as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one journaled fetch.
type Entry struct {
	ID         int64
	RequestID  string
	ClientID   string
	Outcome    string
	StatusCode int
	Duration   time.Duration
	Error      string
	FetchedAt  time.Time
}

// Journal records fetch outcomes.
type Journal struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens or creates the journal database at the given path.
func Open(dbPath string, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	// The page server records from many request goroutines; one writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Journal{db: db, log: log}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores one entry.
func (j *Journal) Record(e Entry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	var errText sql.NullString
	if e.Error != "" {
		errText = sql.NullString{String: e.Error, Valid: true}
	}

	_, err := j.db.Exec(`INSERT INTO fetches
		(request_id, client_id, outcome, status_code, duration_ms, error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.ClientID, e.Outcome, e.StatusCode, e.Duration.Milliseconds(),
		errText, e.FetchedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording fetch: %w", err)
	}
	return nil
}

// Observe journals a fetch event. Its signature matches report.Observer;
// write failures are logged and otherwise ignored.
func (j *Journal) Observe(ev report.FetchEvent) {
	e := Entry{
		RequestID:  ev.RequestID,
		ClientID:   ev.ClientID,
		Outcome:    ev.Kind.String(),
		StatusCode: ev.StatusCode,
		Duration:   ev.Duration,
		FetchedAt:  ev.At,
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	if err := j.Record(e); err != nil {
		j.log.Warn("journal write failed", zap.String("request_id", ev.RequestID), zap.Error(err))
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	rows, err := j.db.Query(`SELECT
		id, request_id, client_id, outcome, status_code, duration_ms, error, fetched_at
		FROM fetches ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		var errText sql.NullString
		var fetchedAt string

		if err := rows.Scan(&e.ID, &e.RequestID, &e.ClientID, &e.Outcome, &e.StatusCode,
			&durationMs, &errText, &fetchedAt); err != nil {
			return nil, err
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		if errText.Valid {
			e.Error = errText.String
		}
		e.FetchedAt, _ = time.Parse(timeLayout, fetchedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries fetched before the cutoff and returns how many went.
func (j *Journal) Prune(before time.Time) (int64, error) {
	res, err := j.db.Exec("DELETE FROM fetches WHERE fetched_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning journal: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of journaled fetches.
func (j *Journal) Count() (int, error) {
	var count int
	err := j.db.QueryRow("SELECT COUNT(*) FROM fetches").Scan(&count)
	return count, err
}
