// Package sqlite provides a storage.Backend that keeps yewdux state in a
// SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jilio/yewdux/storage"
	_ "modernc.org/sqlite"
)

// Backend implements storage.Backend using SQLite.
// Every write stamps its entry with a database-wide version, which Watch
// uses to find entries changed by other connections.
type Backend struct {
	db          *sql.DB
	cfg         *config
	logger      Logger
	metricsHook MetricsHook

	// Prepared statements
	getStmt     *sql.Stmt
	setStmt     *sql.Stmt
	deleteStmt  *sql.Stmt
	versionStmt *sql.Stmt
	changesStmt *sql.Stmt
}

// Ensure Backend implements the required interfaces
var _ storage.Backend = (*Backend)(nil)
var _ storage.Watcher = (*Backend)(nil)

// dbOpener is used to open database connections, injectable for testing
var dbOpener = sql.Open

// New creates a new Backend with the given path and options.
//
// Note: When WithAutoMigrate is enabled (the default), migrations run with
// context.Background() and are not cancellable. This ensures migrations
// complete fully to avoid leaving the database in an inconsistent state.
func New(path string, opts ...Option) (*Backend, error) {
	if path == "" {
		return nil, errors.New("sqlite: path is required")
	}

	// Validate path to prevent URI parameter injection
	if path != ":memory:" && (strings.Contains(path, "?") || strings.Contains(path, "#")) {
		return nil, errors.New("sqlite: path cannot contain '?' or '#' characters")
	}

	cfg := defaultConfig()
	cfg.path = path
	for _, opt := range opts {
		opt(cfg)
	}

	// Build connection string with pragmas
	var dsn string
	if cfg.path == ":memory:" {
		// Use shared cache mode for in-memory databases to allow multiple connections
		dsn = "file::memory:?mode=memory&cache=shared"
	} else {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.path, cfg.busyTimeout.Milliseconds())
	}

	db, err := dbOpener("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// Errors here indicate filesystem issues (read-only, permissions)
	if err := applyPragmas(db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply pragmas: %w", err)
	}

	if cfg.autoMigrate {
		if err := migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: migrate: %w", err)
		}
	}

	return newFromDB(db, cfg)
}

// newFromDB creates a Backend from an existing database connection
func newFromDB(db *sql.DB, cfg *config) (*Backend, error) {
	b := &Backend{
		db:          db,
		cfg:         cfg,
		logger:      cfg.logger,
		metricsHook: cfg.metricsHook,
	}

	if err := b.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: prepare statements: %w", err)
	}

	return b, nil
}

// applyPragmas configures SQLite for optimal performance
func applyPragmas(db *sql.DB, cfg *config) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -16000", // 16MB cache
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds()),
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	return nil
}

// prepareStatements prepares all SQL statements
func (b *Backend) prepareStatements() error {
	type stmtDef struct {
		dest **sql.Stmt
		sql  string
	}

	stmts := []stmtDef{
		{&b.getStmt, "SELECT data FROM entries WHERE key = ?"},
		{&b.setStmt, `INSERT INTO entries (key, data, version, updated_at)
			VALUES (?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM entries), CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET data = excluded.data, version = excluded.version, updated_at = CURRENT_TIMESTAMP`},
		{&b.deleteStmt, "DELETE FROM entries WHERE key = ?"},
		{&b.versionStmt, "SELECT COALESCE(MAX(version), 0) FROM entries"},
		{&b.changesStmt, "SELECT key, version FROM entries WHERE version > ? ORDER BY version"},
	}

	for _, def := range stmts {
		stmt, err := b.db.Prepare(def.sql)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		*def.dest = stmt
	}

	return nil
}

// Get implements storage.Backend
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()

	var data []byte
	err := b.getStmt.QueryRowContext(ctx, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		if b.metricsHook != nil {
			b.metricsHook.OnGet(time.Since(start), false, nil)
		}
		return nil, false, nil
	}
	if err != nil {
		if b.metricsHook != nil {
			b.metricsHook.OnGet(time.Since(start), false, err)
		}
		return nil, false, fmt.Errorf("sqlite: get entry: %w", err)
	}

	if b.metricsHook != nil {
		b.metricsHook.OnGet(time.Since(start), true, nil)
	}

	return data, true, nil
}

// Set implements storage.Backend
func (b *Backend) Set(ctx context.Context, key string, data []byte) error {
	start := time.Now()

	// NOT NULL column: store empty data as an empty blob
	if data == nil {
		data = []byte{}
	}

	_, err := b.setStmt.ExecContext(ctx, key, data)
	if b.metricsHook != nil {
		b.metricsHook.OnSet(time.Since(start), len(data), err)
	}
	if err != nil {
		return fmt.Errorf("sqlite: set entry: %w", err)
	}

	if b.logger != nil {
		b.logger.Debug("saved entry", "key", key, "bytes", len(data))
	}

	return nil
}

// Delete implements storage.Backend
func (b *Backend) Delete(ctx context.Context, key string) error {
	start := time.Now()

	_, err := b.deleteStmt.ExecContext(ctx, key)
	if b.metricsHook != nil {
		b.metricsHook.OnDelete(time.Since(start), err)
	}
	if err != nil {
		return fmt.Errorf("sqlite: delete entry: %w", err)
	}

	if b.logger != nil {
		b.logger.Debug("deleted entry", "key", key)
	}

	return nil
}

// Watch implements storage.Watcher by polling for entries written since the
// last poll, by this or any other connection to the database. Deletions are
// not reported.
func (b *Backend) Watch(ctx context.Context, onChange func(key string)) error {
	var since int64
	if err := b.versionStmt.QueryRowContext(ctx).Scan(&since); err != nil {
		return fmt.Errorf("sqlite: read version: %w", err)
	}

	go func() {
		ticker := time.NewTicker(b.cfg.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			next, err := b.poll(ctx, since, onChange)
			if err != nil {
				if ctx.Err() == nil && b.logger != nil {
					b.logger.Error("failed to poll for changes", "error", err)
				}
				continue
			}
			since = next
		}
	}()

	return nil
}

// poll reports the entries changed after version since and returns the
// newest version seen
func (b *Backend) poll(ctx context.Context, since int64, onChange func(key string)) (int64, error) {
	rows, err := b.changesStmt.QueryContext(ctx, since)
	if err != nil {
		return since, fmt.Errorf("sqlite: read changes: %w", err)
	}

	changes, err := b.scanChanges(rows)
	if err != nil {
		return since, err
	}

	for _, c := range changes {
		onChange(c.key)
		since = c.version
	}

	return since, nil
}

type change struct {
	key     string
	version int64
}

// rowScanner abstracts sql.Rows for testing
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// scanChanges scans rows into changes - extracted for testability
func (b *Backend) scanChanges(rows rowScanner) ([]change, error) {
	defer rows.Close()

	var changes []change
	for rows.Next() {
		var c change
		if err := rows.Scan(&c.key, &c.version); err != nil {
			return nil, fmt.Errorf("sqlite: scan change: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate changes: %w", err)
	}

	return changes, nil
}

// Close closes the database connection and releases resources.
// Prepared statement close errors are ignored as they cannot fail in practice
// with SQLite (the driver handles cleanup when the connection closes).
func (b *Backend) Close() error {
	stmts := []*sql.Stmt{
		b.getStmt,
		b.setStmt,
		b.deleteStmt,
		b.versionStmt,
		b.changesStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	if b.logger != nil {
		b.logger.Info("closing sqlite backend")
	}

	return b.db.Close()
}
