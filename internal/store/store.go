// Package store persists baseline images. Each baseline is a single PNG at a
// deterministic path derived from its logical name and target kind, plus a
// row in a SQLite index carrying capture metadata (source URL, dimensions,
// content hash, timestamp). A new capture replaces the prior baseline
// unconditionally; there is no history.
//
// Concurrent writers to the same baseline name are a known hazard: the file
// and its index row are not updated atomically together. This is a
// single-user local tool and no locking is attempted.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no baseline exists for a name/kind pair. This
// is the expected first-run condition, distinct from any I/O failure.
var ErrNotFound = errors.New("store: baseline not found")

// ErrInvalidName is returned for logical names that are not filesystem-safe.
var ErrInvalidName = errors.New("store: invalid baseline name")

// ErrIO marks read/write failures against the underlying storage.
var ErrIO = errors.New("store: storage failure")

// Schema for the baseline index.
const schema = `
CREATE TABLE IF NOT EXISTS baselines (
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	file        TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	width       INTEGER NOT NULL DEFAULT 0,
	height      INTEGER NOT NULL DEFAULT 0,
	sha256      TEXT NOT NULL,
	captured_at INTEGER NOT NULL,
	PRIMARY KEY (name, kind)
);
`

// Meta is the capture metadata recorded alongside a baseline image.
type Meta struct {
	URL    string
	Width  int
	Height int
}

// Entry is one indexed baseline.
type Entry struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	File       string    `json:"file"`
	URL        string    `json:"url"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	SHA256     string    `json:"sha256"`
	CapturedAt time.Time `json:"captured_at"`
}

// Store maps logical names to baseline PNGs under a base directory.
type Store struct {
	dir string
	db  *sql.DB
}

// Open creates the baseline directory if needed and opens the index.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w: %w", dir, ErrIO, err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("store: open index: %w: %w", ErrIO, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init index: %w: %w", ErrIO, err)
	}
	return &Store{dir: dir, db: db}, nil
}

// Close closes the index database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the deterministic file path for a name/kind pair.
func (s *Store) Path(name, kind string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", name, kind))
}

// ValidateName accepts alphanumerics, underscore, hyphen and dot. Names
// double as file name stems and must not address outside the baseline dir.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > 128 {
		return fmt.Errorf("%w: too long (max 128)", ErrInvalidName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.':
		default:
			return fmt.Errorf("%w: character %q in %q", ErrInvalidName, r, name)
		}
	}
	return nil
}

// Write persists a baseline, replacing any prior capture for the same
// name/kind. Byte-identical rewrites are detected via content hash and leave
// the stored file untouched.
func (s *Store) Write(ctx context.Context, name, kind string, png []byte, meta Meta) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	path := s.Path(name, kind)
	sum := sha256.Sum256(png)
	hash := hex.EncodeToString(sum[:])

	var prior string
	err := s.db.QueryRowContext(ctx,
		`SELECT sha256 FROM baselines WHERE name = ? AND kind = ?`, name, kind).Scan(&prior)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("store: query %s: %w: %w", name, ErrIO, err)
	}

	if prior != hash || !fileExists(path) {
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return "", fmt.Errorf("store: write %s: %w: %w", path, ErrIO, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO baselines (name, kind, file, url, width, height, sha256, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		name, kind, filepath.Base(path), meta.URL, meta.Width, meta.Height, hash,
		time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("store: index %s: %w: %w", name, ErrIO, err)
	}
	return path, nil
}

// Read returns the stored PNG bytes for a name/kind pair, or ErrNotFound when
// no capture exists.
func (s *Store) Read(ctx context.Context, name, kind string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := s.Path(name, kind)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w: %w", path, ErrIO, err)
	}
	return data, nil
}

// Entry returns the index row for a baseline, if present.
func (s *Store) Entry(ctx context.Context, name, kind string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, kind, file, url, width, height, sha256, captured_at
		FROM baselines WHERE name = ? AND kind = ?`, name, kind)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("store: entry %s: %w: %w", name, ErrIO, err)
	}
	return e, nil
}

// List returns all indexed baselines, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, file, url, width, height, sha256, captured_at
		FROM baselines ORDER BY captured_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w: %w", ErrIO, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w: %w", ErrIO, err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Dir returns the baseline directory.
func (s *Store) Dir() string { return s.dir }

func scanEntry(scan func(...any) error) (*Entry, error) {
	var e Entry
	var capturedAt int64
	if err := scan(&e.Name, &e.Kind, &e.File, &e.URL, &e.Width, &e.Height, &e.SHA256, &capturedAt); err != nil {
		return nil, err
	}
	e.CapturedAt = time.UnixMilli(capturedAt)
	return &e, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
