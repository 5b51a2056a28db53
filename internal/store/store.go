// Package store handles SQLite persistence.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/subcrack/internal/mapping"
	"github.com/verte-zerg/subcrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for analysis history and curated mappings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			digest TEXT NOT NULL,
			ciphertext TEXT NOT NULL,
			letters INTEGER NOT NULL,
			reference TEXT NOT NULL,
			mapping TEXT NOT NULL,
			plaintext TEXT NOT NULL,
			score REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mappings (
			digest TEXT PRIMARY KEY,
			mapping TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Digest identifies a ciphertext in the store.
func Digest(ciphertext string) string {
	sum := sha256.Sum256([]byte(ciphertext))
	return hex.EncodeToString(sum[:])
}

// InsertRun stores a completed analysis run.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord) (int64, error) {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (created_at, digest, ciphertext, letters, reference, mapping, plaintext, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339Nano),
		Digest(run.Ciphertext),
		run.Ciphertext,
		run.Letters,
		run.Reference,
		run.Mapping,
		run.Plaintext,
		run.Score,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, ciphertext, letters, reference, mapping, plaintext, score
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Ciphertext, &run.Letters, &run.Reference, &run.Mapping, &run.Plaintext, &run.Score); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// SaveMapping stores the curated mapping for a ciphertext, replacing any
// previous one.
func (s *Store) SaveMapping(ctx context.Context, ciphertext string, m mapping.Mapping) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mappings (digest, mapping, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET mapping = excluded.mapping, updated_at = excluded.updated_at`,
		Digest(ciphertext),
		m.String(),
		time.Now().Format(time.RFC3339Nano),
	)
	return err
}

// LoadMapping returns the curated mapping for a ciphertext, or nil when none
// was saved.
func (s *Store) LoadMapping(ctx context.Context, ciphertext string) (mapping.Mapping, error) {
	saved, err := s.savedMapping(ctx, Digest(ciphertext))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return mapping.Parse(saved.Mapping)
}

func (s *Store) savedMapping(ctx context.Context, digest string) (model.SavedMapping, error) {
	var saved model.SavedMapping
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT digest, mapping, updated_at FROM mappings WHERE digest = ?`, digest,
	).Scan(&saved.Digest, &saved.Mapping, &updatedAt)
	if err != nil {
		return model.SavedMapping{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return model.SavedMapping{}, err
	}
	saved.UpdatedAt = parsed
	return saved, nil
}
