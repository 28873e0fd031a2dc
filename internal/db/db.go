package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite journal connection
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates the SQLite database at the specified path
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode so status readers never block the daemon
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{
		conn: conn,
		path: path,
	}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		// Checkpoint the WAL so readers of the main file see everything
		db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return db.conn.Close()
	}
	return nil
}

// Flush forces a WAL checkpoint to write pending changes to the main database file
func (db *DB) Flush() error {
	if db.conn != nil {
		_, err := db.conn.Exec("PRAGMA wal_checkpoint(RESTART)")
		return err
	}
	return nil
}

func (db *DB) initSchema() error {
	schema := `
	-- Daemon lifecycle events
	CREATE TABLE IF NOT EXISTS daemon_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		pid INTEGER NOT NULL DEFAULT 0,
		details TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Heartbeat ticks
	CREATE TABLE IF NOT EXISTS heartbeats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		counter INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_daemon_events_timestamp ON daemon_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_daemon_events_run ON daemon_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_heartbeats_run ON heartbeats(run_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// isBusy reports whether err is SQLite's "database is locked"
func isBusy(err error) bool {
	return strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "SQLITE_BUSY")
}

// exec retries briefly while the database is locked (3 attempts, 5ms apart).
// Journal writes are best-effort and must not stall the heartbeat.
func (db *DB) exec(query string, args ...any) error {
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		_, err := db.conn.Exec(query, args...)
		if err == nil {
			return nil
		}
		if isBusy(err) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		return err
	}
	return fmt.Errorf("journal write failed after %d retries: database locked", maxRetries)
}

// DaemonEvent represents a daemon lifecycle event
type DaemonEvent struct {
	ID        int64
	RunID     string
	EventType string
	PID       int
	Details   string
	Timestamp time.Time
}

// LogDaemonEvent logs a daemon lifecycle event to the database
func (db *DB) LogDaemonEvent(runID, eventType string, pid int, details string) error {
	return db.exec(
		`INSERT INTO daemon_events (run_id, event_type, pid, details, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, eventType, pid, details, time.Now(),
	)
}

// Heartbeat represents one recorded tick
type Heartbeat struct {
	ID        int64
	RunID     string
	Counter   int32
	Timestamp time.Time
}

// LogHeartbeat records a tick and prunes all but the newest keep rows.
// keep <= 0 disables pruning.
func (db *DB) LogHeartbeat(runID string, counter int32, keep int) error {
	if err := db.exec(
		`INSERT INTO heartbeats (run_id, counter, timestamp) VALUES (?, ?, ?)`,
		runID, counter, time.Now(),
	); err != nil {
		return err
	}
	if keep <= 0 {
		return nil
	}
	return db.exec(
		`DELETE FROM heartbeats WHERE id <= (SELECT MAX(id) FROM heartbeats) - ?`,
		keep,
	)
}

// GetRecentDaemonEvents retrieves recent daemon events, newest first
func (db *DB) GetRecentDaemonEvents(limit int) ([]DaemonEvent, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, event_type, pid, details, timestamp
		 FROM daemon_events
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []DaemonEvent
	for rows.Next() {
		var e DaemonEvent
		if err := rows.Scan(&e.ID, &e.RunID, &e.EventType, &e.PID, &e.Details, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetLastStart retrieves the most recent "start" event, or nil if there is none
func (db *DB) GetLastStart() (*DaemonEvent, error) {
	var e DaemonEvent
	err := db.conn.QueryRow(
		`SELECT id, run_id, event_type, pid, details, timestamp
		 FROM daemon_events
		 WHERE event_type = 'start'
		 ORDER BY id DESC
		 LIMIT 1`,
	).Scan(&e.ID, &e.RunID, &e.EventType, &e.PID, &e.Details, &e.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetLastHeartbeat retrieves the newest heartbeat of a run, or nil if there is none
func (db *DB) GetLastHeartbeat(runID string) (*Heartbeat, error) {
	var h Heartbeat
	err := db.conn.QueryRow(
		`SELECT id, run_id, counter, timestamp
		 FROM heartbeats
		 WHERE run_id = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		runID,
	).Scan(&h.ID, &h.RunID, &h.Counter, &h.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CountHeartbeats returns how many heartbeat rows are stored for a run
func (db *DB) CountHeartbeats(runID string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM heartbeats WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
