package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"morphcorpus/internal"
)

type DB struct {
	conn *sql.DB
}

type RunRecord struct {
	RunID    string
	Input    string
	Lang     string
	Splitter string
	Timings  map[string]float64
	Counts   map[string]int
}

type LangCount struct {
	Lang  string
	Count int
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
  lang TEXT NOT NULL,
  word TEXT NOT NULL,
  analysisJson TEXT NOT NULL,
  rawJson TEXT,
  analysisCount INTEGER NOT NULL DEFAULT 0,
  fetchedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (lang, word)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL UNIQUE,
  input TEXT NOT NULL,
  lang TEXT NOT NULL,
  splitter TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// GetAnalysis returns the cached analysis for (lang, word), or nil when none is stored.
func (d *DB) GetAnalysis(ctx context.Context, lang, word string) (*internal.LookupResult, error) {
	var analysisJSON string
	var rawJSON sql.NullString
	err := d.conn.QueryRowContext(ctx, `
SELECT analysisJson, rawJson FROM analyses WHERE lang = ? AND word = ?
`, lang, word).Scan(&analysisJSON, &rawJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res internal.LookupResult
	if err := json.Unmarshal([]byte(analysisJSON), &res.Analysis); err != nil {
		return nil, err
	}
	if rawJSON.Valid && rawJSON.String != "" {
		res.Raw = json.RawMessage(rawJSON.String)
	}
	return &res, nil
}

func (d *DB) PutAnalysis(ctx context.Context, lang, word string, res internal.LookupResult) error {
	analysisJSON, err := json.Marshal(res.Analysis)
	if err != nil {
		return err
	}
	var raw *string
	if len(res.Raw) > 0 {
		s := string(res.Raw)
		raw = &s
	}

	_, err = d.conn.ExecContext(ctx, `
INSERT INTO analyses (lang, word, analysisJson, rawJson, analysisCount)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(lang, word) DO UPDATE SET
  analysisJson=excluded.analysisJson,
  rawJson=excluded.rawJson,
  analysisCount=excluded.analysisCount,
  fetchedAt=CURRENT_TIMESTAMP
`, lang, word, string(analysisJSON), raw, res.Analysis.Count)
	return err
}

func (d *DB) CountAnalysesByLang(ctx context.Context) ([]LangCount, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT lang, COUNT(*) FROM analyses GROUP BY lang ORDER BY lang`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LangCount
	for rows.Next() {
		var lc LangCount
		if err := rows.Scan(&lc.Lang, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(ctx context.Context, run RunRecord) error {
	timingsJSON, _ := json.Marshal(run.Timings)
	countsJSON, _ := json.Marshal(run.Counts)
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO runs (runId, input, lang, splitter, timingsJson, countsJson) VALUES (?, ?, ?, ?, ?, ?)
`, run.RunID, run.Input, run.Lang, run.Splitter, string(timingsJSON), string(countsJSON))
	return err
}

// LastRun returns the most recently recorded run, or nil when none exists.
func (d *DB) LastRun(ctx context.Context) (*RunRecord, error) {
	var run RunRecord
	var timingsJSON, countsJSON string
	err := d.conn.QueryRowContext(ctx, `
SELECT runId, input, lang, splitter, timingsJson, countsJson FROM runs ORDER BY id DESC LIMIT 1
`).Scan(&run.RunID, &run.Input, &run.Lang, &run.Splitter, &timingsJSON, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(timingsJSON), &run.Timings)
	_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
	return &run, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
