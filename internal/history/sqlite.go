package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skin-wellness-navigator/internal/domain"
)

// DefaultMaxEntries caps how many analyses are retained.
const DefaultMaxEntries = 100

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	dbPath     string
	maxEntries int
}

// NewSQLiteStore opens the history database at dbPath, creating the file and
// schema as needed. maxEntries bounds retention; values below one fall back
// to DefaultMaxEntries.
func NewSQLiteStore(dbPath string, maxEntries int) (*SQLiteStore, error) {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		dbPath:     dbPath,
		maxEntries: maxEntries,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		condition TEXT NOT NULL,
		confidence REAL NOT NULL,
		using_fallback INTEGER NOT NULL DEFAULT 0,
		response TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores a response and prunes entries beyond the retention cap,
// oldest first.
func (s *SQLiteStore) Save(ctx context.Context, response *domain.AnalysisResponse) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (condition, confidence, using_fallback, response, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		string(response.Classification),
		response.Confidence,
		response.UsingFallback,
		string(payload),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return s.Prune(ctx, s.maxEntries)
}

// Prune deletes all but the newest max entries.
func (s *SQLiteStore) Prune(ctx context.Context, max int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM analyses WHERE id NOT IN (
			SELECT id FROM analyses ORDER BY id DESC LIMIT ?
		)
	`, max)
	if err != nil {
		return fmt.Errorf("failed to prune: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// means the retention cap.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, condition, confidence, using_fallback, response, created_at
		FROM analyses
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	entry := &Entry{}
	var condition, payload string

	if err := rows.Scan(
		&entry.ID, &condition, &entry.Confidence,
		&entry.UsingFallback, &payload, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}

	entry.Condition = domain.Label(condition)
	if err := json.Unmarshal([]byte(payload), &entry.Response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return entry, nil
}

// Count returns the number of stored analyses.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
