// Package transcript keeps an sqlite audit log of finished session attempts.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS session_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	page_id        TEXT NOT NULL,
	session_id     TEXT NOT NULL,
	attempt        INTEGER NOT NULL,
	prompt         TEXT NOT NULL,
	outcome        TEXT NOT NULL,
	stage          TEXT,
	matched_id     INTEGER,
	paired_id      INTEGER,
	output         TEXT,
	error          TEXT,
	corpus_version TEXT,
	match_us       INTEGER NOT NULL DEFAULT 0,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS session_log_session ON session_log(session_id, attempt);
`

// #endregion schema

// #region entry
// Entry is one row of session_log.
type Entry struct {
	ID            int64
	PageID        string
	SessionID     string
	Attempt       int
	Prompt        string
	Outcome       string // "resolved" | "unmatched" | "unpaired" | "error"
	Stage         string
	MatchedID     int // 0 when nothing matched
	PairedID      int
	Output        string
	Error         string
	CorpusVersion string
	MatchDuration time.Duration
	StartedAt     time.Time
	FinishedAt    time.Time
}

// #endregion entry

// #region store
// Store writes and reads the session log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it. ":memory:"
// gives a private in-memory log.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" a single database and serializes writes.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region append
// Append writes e. Zero timestamps become now.
func (s *Store) Append(ctx context.Context, e Entry) (int64, error) {
	now := time.Now().UTC()
	if e.FinishedAt.IsZero() {
		e.FinishedAt = now
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = e.FinishedAt
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_log (page_id, session_id, attempt, prompt, outcome, stage, matched_id, paired_id,
		                          output, error, corpus_version, match_us, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PageID,
		e.SessionID,
		e.Attempt,
		e.Prompt,
		e.Outcome,
		nullIfEmpty(e.Stage),
		nullIfZero(e.MatchedID),
		nullIfZero(e.PairedID),
		nullIfEmpty(e.Output),
		nullIfEmpty(e.Error),
		nullIfEmpty(e.CorpusVersion),
		e.MatchDuration.Microseconds(),
		e.StartedAt.UTC().Format(time.RFC3339Nano),
		e.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("append session log: %w", err)
	}
	return res.LastInsertId()
}

// #endregion append

// #region query
const selectColumns = `SELECT id, page_id, session_id, attempt, prompt, outcome, stage, matched_id, paired_id,
	output, error, corpus_version, match_us, started_at, finished_at FROM session_log`

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
}

// BySession returns every attempt of a session, oldest first.
func (s *Store) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	return s.query(ctx, selectColumns+` WHERE session_id = ? ORDER BY attempt, id`, sessionID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query session log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                              Entry
			stage, output, errText, corpus sql.NullString
			matched, paired                sql.NullInt64
			matchUS                        int64
			started, finished              string
		)
		if err := rows.Scan(&e.ID, &e.PageID, &e.SessionID, &e.Attempt, &e.Prompt, &e.Outcome,
			&stage, &matched, &paired, &output, &errText, &corpus, &matchUS, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan session log: %w", err)
		}
		e.Stage, e.Output, e.Error, e.CorpusVersion = stage.String, output.String, errText.String, corpus.String
		e.MatchedID, e.PairedID = int(matched.Int64), int(paired.Int64)
		e.MatchDuration = time.Duration(matchUS) * time.Microsecond
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		e.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion query

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

// #endregion helpers
