// Package cache stores compiled artifacts in SQLite, keyed by the content
// they were compiled from.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/funvibe/still/internal/diagnostics"
)

// Artifact is the cached output of one compilation.
type Artifact struct {
	Name        string
	Rust        string
	Diagnostics []*diagnostics.Diagnostic
	RunID       uuid.UUID
	CreatedAt   time.Time
}

// Store is a SQLite-backed artifact cache. It is safe for concurrent use.
type Store struct {
	db    *sql.DB
	runID uuid.UUID
}

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	rust        TEXT NOT NULL,
	diagnostics TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	created_at  INTEGER NOT NULL
)`

// Open opens the cache database at path. Use ":memory:" for a throwaway
// store. Every Put through this store is tagged with one run id.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	return &Store{db: db, runID: uuid.New()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunID() uuid.UUID {
	return s.runID
}

// InitSchema creates the artifact table if it does not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

// Key identifies the artifact of the program name with contents input,
// compiled by compilerVersion against runtimeModule. The name is part of
// the key because diagnostics carry it.
func Key(name string, input []byte, compilerVersion, runtimeModule string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(name), input, []byte(compilerVersion), []byte(runtimeModule)} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the artifact stored under key. A miss is (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Artifact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, rust, diagnostics, run_id, created_at FROM artifacts WHERE key = ?`, key)

	var (
		a       Artifact
		diags   string
		runID   string
		created int64
	)
	if err := row.Scan(&a.Name, &a.Rust, &diags, &runID, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := json.Unmarshal([]byte(diags), &a.Diagnostics); err != nil {
		return nil, fmt.Errorf("corrupt diagnostics for %s: %w", a.Name, err)
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("corrupt run id for %s: %w", a.Name, err)
	}
	a.RunID = id
	a.CreatedAt = time.Unix(created, 0).UTC()
	return &a, nil
}

// Put stores a under key, replacing any previous artifact. RunID and
// CreatedAt are filled in by the store.
func (s *Store) Put(ctx context.Context, key string, a *Artifact) error {
	diags := a.Diagnostics
	if diags == nil {
		diags = []*diagnostics.Diagnostic{}
	}
	encoded, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	a.RunID = s.runID
	a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (key, name, rust, diagnostics, run_id, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET name = excluded.name, rust = excluded.rust,
		 diagnostics = excluded.diagnostics, run_id = excluded.run_id, created_at = excluded.created_at`,
		key, a.Name, a.Rust, string(encoded), a.RunID.String(), a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", a.Name, err)
	}
	return nil
}
