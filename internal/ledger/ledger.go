// Package ledger persists one terminal record per processed session. The
// ledger is an audit surface: the status command and the health API read it,
// but pipeline behavior never depends on its contents.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fitforge/internal/config"
	"fitforge/internal/services"
	"fitforge/internal/session"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; an old database must be deleted rather than migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one terminal session record.
type Entry struct {
	SessionID  string
	UserID     string
	Outcome    session.Status
	ErrorKind  services.Kind
	Duration   time.Duration
	AssetKeys  session.UploadedKeys
	RecordedAt time.Time
}

// Counts aggregates ledger outcomes.
type Counts struct {
	Processed int64
	Failed    int64
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.LedgerPath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record inserts one terminal session row.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	var keysJSON any
	if len(entry.AssetKeys) > 0 {
		data, err := json.Marshal(entry.AssetKeys)
		if err != nil {
			return fmt.Errorf("marshal asset keys: %w", err)
		}
		keysJSON = string(data)
	}

	var errorKind any
	if entry.ErrorKind != "" {
		errorKind = string(entry.ErrorKind)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (
            session_id, user_id, outcome, error_kind, duration_ms, asset_keys_json, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.UserID,
		string(entry.Outcome),
		errorKind,
		entry.Duration.Milliseconds(),
		keysJSON,
		recordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, user_id, outcome, error_kind, duration_ms, asset_keys_json, recorded_at
         FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			outcome    string
			errorKind  sql.NullString
			durationMS int64
			keysJSON   sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&entry.SessionID, &entry.UserID, &outcome, &errorKind, &durationMS, &keysJSON, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		entry.Outcome = session.Status(outcome)
		if errorKind.Valid {
			entry.ErrorKind = services.Kind(errorKind.String)
		}
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if keysJSON.Valid && keysJSON.String != "" {
			if err := json.Unmarshal([]byte(keysJSON.String), &entry.AssetKeys); err != nil {
				return nil, fmt.Errorf("decode asset keys: %w", err)
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			entry.RecordedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session records: %w", err)
	}
	return entries, nil
}

// TotalCounts aggregates all recorded outcomes.
func (s *Store) TotalCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
         FROM sessions`, string(session.StatusFailure)).
		Scan(&counts.Processed, &counts.Failed)
	if err != nil {
		return Counts{}, fmt.Errorf("count session records: %w", err)
	}
	return counts, nil
}
