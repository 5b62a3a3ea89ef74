// Package journal persists fixture lifecycle events to SQLite so that the
// start and stop order of fixtures can be inspected after a test run.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"

	"github.com/giantswarm/httpenv/internal/fileutil"
	"github.com/giantswarm/httpenv/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS lifecycle (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         INTEGER NOT NULL,
	event      TEXT    NOT NULL,
	scope_id   TEXT    NOT NULL,
	scope_name TEXT    NOT NULL,
	level      TEXT    NOT NULL,
	fixture_id TEXT    NOT NULL DEFAULT '',
	address    TEXT    NOT NULL DEFAULT '',
	error      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS lifecycle_scope ON lifecycle (scope_id);
CREATE INDEX IF NOT EXISTS lifecycle_fixture ON lifecycle (fixture_id);
`

// ErrClosed is returned by operations on a closed Journal.
var ErrClosed = errors.New("journal closed")

// Entry is one recorded lifecycle step.
type Entry struct {
	ID        int64
	Time      time.Time
	Event     string
	ScopeID   string
	ScopeName string
	Level     string
	FixtureID string
	Address   string
	Error     string
}

// Journal appends entries to a SQLite database. It is safe for concurrent
// use; writes are serialized on a single connection.
type Journal struct {
	mu   sync.RWMutex // guards db against Close
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens or creates the journal database at path, creating parent
// directories as needed. A nil log means the package logger, looked up on
// each use.
func Open(ctx context.Context, path string, log *slog.Logger) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path must not be empty")
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, err
	}

	// Several test binaries may share one journal file: WAL plus a busy
	// timeout lets their writers queue instead of failing.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema in %s: %w", path, err)
	}

	j := &Journal{db: db, path: path, log: log}
	j.logger().Debug("journal opened", "path", path)
	return j, nil
}

func (j *Journal) logger() *slog.Logger {
	if j.log != nil {
		return j.log
	}
	return logging.Logger()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.path
}

// Record appends e and returns its ID. A zero e.Time is set to now.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return 0, ErrClosed
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO lifecycle (at, event, scope_id, scope_name, level, fixture_id, address, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UnixNano(), e.Event, e.ScopeID, e.ScopeName, e.Level, e.FixtureID, e.Address, e.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("record %s event: %w", e.Event, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record %s event: %w", e.Event, err)
	}
	return id, nil
}

// Filter narrows Entries. Empty fields match everything.
type Filter struct {
	ScopeID   string
	FixtureID string
	Event     string
}

// Entries returns the entries matching f in insertion order.
func (j *Journal) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return nil, ErrClosed
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, event, scope_id, scope_name, level, fixture_id, address, error
		 FROM lifecycle
		 WHERE (?1 = '' OR scope_id = ?1)
		   AND (?2 = '' OR fixture_id = ?2)
		   AND (?3 = '' OR event = ?3)
		 ORDER BY id`,
		f.ScopeID, f.FixtureID, f.Event,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			j.logger().Debug("close journal rows", "error", closeErr)
		}
	}()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &at, &e.Event, &e.ScopeID, &e.ScopeName, &e.Level,
			&e.FixtureID, &e.Address, &e.Error); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Time = time.Unix(0, at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return out, nil
}

// Close closes the database. Calling Close more than once returns nil.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	if err != nil {
		return fmt.Errorf("close journal %s: %w", j.path, err)
	}
	return nil
}
