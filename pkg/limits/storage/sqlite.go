package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite for persistence.
// This backend survives restarts and is suitable for single-instance
// deployments where rate limit state must not reset on redeploy.
//
// SQLiteBackend uses a write-ahead log (WAL) for better concurrent
// performance.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	mu        sync.RWMutex
	closeOnce sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	deleteStmt  *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a new SQLite storage backend with default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteBackendConfig{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewSQLiteBackendWithConfig creates a new SQLite backend with custom configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bucket_states (
		key TEXT NOT NULL PRIMARY KEY,
		tokens INTEGER NOT NULL,
		last_refill INTEGER NOT NULL,
		last_updated INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_last_updated ON bucket_states(last_updated);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO bucket_states (key, tokens, last_refill, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			tokens = excluded.tokens,
			last_refill = excluded.last_refill,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT key, tokens, last_refill, last_updated, created_at
		FROM bucket_states
		WHERE key = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM bucket_states
		WHERE key = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM bucket_states
		WHERE last_updated < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Save persists the bucket state for a client key.
func (s *SQLiteBackend) Save(ctx context.Context, state *BucketState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.LastUpdated = now

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveStmt.ExecContext(ctx,
		state.Key,
		state.Tokens,
		state.LastRefill.UnixNano(),
		state.LastUpdated.Unix(),
		state.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

// Load retrieves the bucket state for a client key.
// Returns nil if no state exists.
func (s *SQLiteBackend) Load(ctx context.Context, key string) (*BucketState, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		tokens      int64
		lastRefill  int64
		lastUpdated int64
		createdAt   int64
	)

	row := s.loadStmt.QueryRowContext(ctx, key)
	if err := row.Scan(&key, &tokens, &lastRefill, &lastUpdated, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return &BucketState{
		Key:         key,
		Tokens:      tokens,
		LastRefill:  time.Unix(0, lastRefill),
		LastUpdated: time.Unix(lastUpdated, 0),
		CreatedAt:   time.Unix(createdAt, 0),
	}, nil
}

// Delete removes the bucket state for a client key.
func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// Cleanup removes entries not updated since olderThan.
func (s *SQLiteBackend) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup state: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return int(deleted), nil
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt, s.cleanupStmt} {
			if stmt != nil {
				_ = stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
