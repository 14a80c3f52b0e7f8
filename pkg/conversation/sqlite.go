package conversation

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore is a Store backed by a SQLite database, for deployments that
// need sessions to survive restarts. It uses a write-ahead log for better
// concurrent read performance and a single writer connection.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration

	mu        sync.Mutex
	closeOnce sync.Once

	insertStmt  *sql.Stmt
	selectStmt  *sql.Stmt
	touchStmt   *sql.Stmt
	deleteStmt  *sql.Stmt
	cleanupStmt *sql.Stmt
	countStmt   *sql.Stmt

	// now is injectable for tests.
	now func() time.Time
}

// NewSQLiteStore opens (creating if necessary) a session database at path
// with the given idle TTL.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare session statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id             TEXT PRIMARY KEY,
		agent_name     TEXT NOT NULL,
		group_id       TEXT NOT NULL,
		token          TEXT NOT NULL,
		created_at     INTEGER NOT NULL,
		last_active_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(
		`INSERT INTO sessions (id, agent_name, group_id, token, created_at, last_active_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	s.selectStmt, err = s.db.Prepare(
		`SELECT id, agent_name, group_id, token, created_at, last_active_at
		 FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare select: %w", err)
	}

	s.touchStmt, err = s.db.Prepare(
		`UPDATE sessions SET last_active_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare touch: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE last_active_at < ?`)
	if err != nil {
		return fmt.Errorf("prepare cleanup: %w", err)
	}

	s.countStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM sessions`)
	if err != nil {
		return fmt.Errorf("prepare count: %w", err)
	}

	return nil
}

// Create allocates a fresh session.
func (s *SQLiteStore) Create(agentName, groupID, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &Session{
		ID:           uuid.NewString(),
		AgentName:    agentName,
		GroupID:      groupID,
		Token:        token,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	_, err := s.insertStmt.Exec(
		session.ID,
		session.AgentName,
		session.GroupID,
		session.Token,
		session.CreatedAt.UnixMilli(),
		session.LastActiveAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// Get returns the session or nil if absent or expired. Expired rows are
// deleted under the same lock as the lookup.
func (s *SQLiteStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.scanSession(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if s.now().Sub(session.LastActiveAt) > s.ttl {
		if _, err := s.deleteStmt.Exec(id); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, nil
	}

	return session, nil
}

func (s *SQLiteStore) scanSession(id string) (*Session, error) {
	var (
		session           Session
		createdAt, lastAt int64
	)
	err := s.selectStmt.QueryRow(id).Scan(
		&session.ID,
		&session.AgentName,
		&session.GroupID,
		&session.Token,
		&createdAt,
		&lastAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session.CreatedAt = time.UnixMilli(createdAt)
	session.LastActiveAt = time.UnixMilli(lastAt)
	return &session, nil
}

// Touch advances LastActiveAt if the session exists.
func (s *SQLiteStore) Touch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.touchStmt.Exec(s.now().UnixMilli(), id); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Delete removes the session. Idempotent.
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.Exec(id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpired removes every stale session and returns the count.
func (s *SQLiteStore) CleanupExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl).UnixMilli()
	result, err := s.cleanupStmt.Exec(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed sessions: %w", err)
	}
	return int(removed), nil
}

// Stats reports the current session count.
func (s *SQLiteStore) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.countStmt.QueryRow().Scan(&count); err != nil {
		return Stats{}, fmt.Errorf("failed to count sessions: %w", err)
	}
	return Stats{
		ActiveSessions: count,
		Backend:        "sqlite",
	}, nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{
			s.insertStmt, s.selectStmt, s.touchStmt,
			s.deleteStmt, s.cleanupStmt, s.countStmt,
		} {
			if stmt != nil {
				stmt.Close()
			}
		}
		closeErr = s.db.Close()
	})
	return closeErr
}
