// Package sqlite implements the relational store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/kailas-cloud/pagemark/internal/db"
	"github.com/kailas-cloud/pagemark/internal/db/sqlite/migrations"
)

// Compile-time check: Store implements db.RelationalStore.
var _ db.RelationalStore = (*Store)(nil)

// Config holds connection parameters for a SQLite store.
type Config struct {
	Path          string
	BusyTimeoutMS int
}

// Store implements db.RelationalStore over database/sql and modernc.org/sqlite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the database file and applies pending migrations.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = 5000
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: conn, path: cfg.Path}
	if _, err := s.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func dsn(cfg Config) string {
	return fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeoutMS,
	)
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w: %w", db.ErrNotReady, ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Exec runs a write statement.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (db.ExecResult, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return db.ExecResult{}, &db.Error{Op: db.OpExec, Err: translate(err)}
	}
	var out db.ExecResult
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return db.ExecResult{}, &db.Error{Op: db.OpExec, Err: err}
	}
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return db.ExecResult{}, &db.Error{Op: db.OpExec, Err: err}
	}
	return out, nil
}

// Query runs a statement and calls scan for every returned row.
func (s *Store) Query(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: translate(err)}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return &db.Error{Op: db.OpQuery, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return &db.Error{Op: db.OpQuery, Err: translate(err)}
	}
	return nil
}

// QueryRow runs a statement expected to return one row.
// Returns db.ErrKeyNotFound when there is none.
func (s *Store) QueryRow(ctx context.Context, scan func(db.Scanner) error, query string, args ...any) error {
	if err := scan(s.db.QueryRowContext(ctx, query, args...)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: db.OpQueryRow, Err: translate(err)}
	}
	return nil
}

// Version returns the highest applied migration version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&v); err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}
	return v, nil
}

// Migrate applies every embedded migration newer than the recorded version.
// Each migration runs in its own transaction together with its version row.
// Returns the resulting schema version.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	return s.migrate(ctx, migrations.FS)
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}

	current, err := s.Version(ctx)
	if err != nil {
		return 0, err
	}

	files, err := upFiles(fsys)
	if err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}

	for _, f := range files {
		if f.version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return current, &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("read %s: %w", f.name, err)}
		}
		if err := s.apply(ctx, f.version, string(content)); err != nil {
			return current, &db.Error{
				Op:  db.OpMigrate,
				Err: fmt.Errorf("%w: %s: %w", db.ErrMigrationFailed, f.name, err),
			}
		}
		current = f.version
	}
	return current, nil
}

func (s *Store) apply(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		version, time.Now().UnixMilli(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

type migrationFile struct {
	version int
	name    string
}

// upFiles lists NNN_name.up.sql files sorted by version.
func upFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []migrationFile
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		files = append(files, migrationFile{version: version, name: name})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// translate maps constraint violations to db sentinels, keeping the driver error in the chain.
func translate(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", db.ErrKeyExists, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %w", db.ErrForeignKey, err)
	default:
		return err
	}
}
