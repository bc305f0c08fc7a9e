// Package history persists a log of detections in SQLite.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/textsense/internal/model"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	text_sha256    TEXT NOT NULL,
	mode           TEXT NOT NULL,
	words          INTEGER NOT NULL,
	is_ai          INTEGER NOT NULL,
	ai_probability REAL NOT NULL,
	confidence     TEXT NOT NULL,
	elapsed_ms     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections(created_at);
`

// Entry is one recorded detection. The text itself is never stored, only
// its digest.
type Entry struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TextSHA256    string    `json:"text_sha256"`
	Mode          string    `json:"mode"`
	Words         int       `json:"words"`
	IsAI          bool      `json:"is_ai"`
	AIProbability float64   `json:"ai_probability"`
	Confidence    string    `json:"confidence"`
	ElapsedMS     int64     `json:"elapsed_ms"`
}

// EntryFromReport builds the history entry for a report of text
func EntryFromReport(r *model.Report, text string) Entry {
	sum := sha256.Sum256([]byte(text))
	e := Entry{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		TextSHA256: hex.EncodeToString(sum[:]),
		Mode:       string(r.Mode),
		Words:      r.InputWords,
		ElapsedMS:  r.Elapsed.Milliseconds(),
	}
	if r.Result != nil {
		e.IsAI = r.Result.IsAI
		e.AIProbability = r.Result.AIProbability
		e.Confidence = string(r.Result.Confidence)
		e.Words = r.Result.WordsAnalyzed
	}
	return e
}

// Store manages the detection log in SQLite
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, creating its directory, and runs migrations
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer; a single connection serializes access instead
	// of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts an entry. Missing ID and timestamp are filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	isAI := 0
	if e.IsAI {
		isAI = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (id, created_at, text_sha256, mode, words, is_ai, ai_probability, confidence, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC().Format(time.RFC3339Nano), e.TextSHA256, e.Mode, e.Words,
		isAI, e.AIProbability, e.Confidence, e.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// Count returns the total number of recorded detections
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM detections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count detections: %w", err)
	}
	return n, nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, text_sha256, mode, words, is_ai, ai_probability, confidence, elapsed_ms
		 FROM detections ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		var isAI int
		if err := rows.Scan(&e.ID, &createdAt, &e.TextSHA256, &e.Mode, &e.Words, &isAI, &e.AIProbability, &e.Confidence, &e.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		e.IsAI = isAI == 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detections: %w", err)
	}
	return entries, nil
}
