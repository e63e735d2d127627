package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// files above this size are fingerprinted by size and mtime instead of content
const hashLimit = 32 << 20

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	source_path  TEXT PRIMARY KEY,
	fingerprint  TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	blocks       INTEGER NOT NULL DEFAULT 0,
	skipped      INTEGER NOT NULL DEFAULT 0,
	charset      TEXT NOT NULL DEFAULT '',
	run_id       TEXT NOT NULL DEFAULT '',
	converted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversions_converted_at ON conversions(converted_at);
`

// remembers finished conversions so unchanged inputs can be skipped
type Journal struct {
	db   *sql.DB
	path string
}

type Entry struct {
	SourcePath  string
	Fingerprint string
	OutputPath  string
	Blocks      int
	Skipped     int
	Charset     string
	RunID       string
	ConvertedAt time.Time
}

func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// batch workers share the handle
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// inserts or replaces the entry for e.SourcePath
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.SourcePath) == "" {
		return errors.New("journal entry needs a source path")
	}
	if e.ConvertedAt.IsZero() {
		e.ConvertedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO conversions (source_path, fingerprint, output_path, blocks, skipped, charset, run_id, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			output_path = excluded.output_path,
			blocks = excluded.blocks,
			skipped = excluded.skipped,
			charset = excluded.charset,
			run_id = excluded.run_id,
			converted_at = excluded.converted_at`,
		e.SourcePath, e.Fingerprint, e.OutputPath, e.Blocks, e.Skipped, e.Charset, e.RunID,
		e.ConvertedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record conversion of %s: %w", e.SourcePath, err)
	}
	return nil
}

// returns the entry for sourcePath, or nil when none exists
func (j *Journal) Lookup(ctx context.Context, sourcePath string) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT source_path, fingerprint, output_path, blocks, skipped, charset, run_id, converted_at
		FROM conversions WHERE source_path = ?`, sourcePath)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// reports whether sourcePath was converted with the same fingerprint and its
// output still exists
func (j *Journal) Unchanged(ctx context.Context, sourcePath, fingerprint string) (bool, error) {
	e, err := j.Lookup(ctx, sourcePath)
	if err != nil || e == nil {
		return false, err
	}
	if e.Fingerprint != fingerprint {
		return false, nil
	}
	if _, err := os.Stat(e.OutputPath); err != nil {
		return false, nil
	}
	return true, nil
}

// newest first
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT source_path, fingerprint, output_path, blocks, skipped, charset, run_id, converted_at
		FROM conversions ORDER BY converted_at DESC, source_path LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		e  Entry
		at string
	)
	if err := scanner.Scan(&e.SourcePath, &e.Fingerprint, &e.OutputPath, &e.Blocks, &e.Skipped, &e.Charset, &e.RunID, &at); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("parse converted_at %q: %w", at, err)
	}
	e.ConvertedAt = parsed
	return &e, nil
}

// content hash for subtitle sized files, size and mtime for containers
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > hashLimit {
		return fmt.Sprintf("stat:%d:%d", info.Size(), info.ModTime().UnixNano()), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
