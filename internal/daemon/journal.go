package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.olrik.dev/sentinel/internal/db"
)

// ErrJournalBusy is returned when another daemon holds the journal lock.
var ErrJournalBusy = errors.New("journal is in use by another daemon")

// Journal records one daemon run in the SQLite database.
type Journal struct {
	RunID string
	db    *db.DB
	lock  *flock.Flock
	keep  int
}

// OpenJournal takes the journal's advisory lock and opens the database.
func OpenJournal(path string, keep int) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJournalBusy, path)
	}

	database, err := db.Open(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &Journal{
		RunID: uuid.NewString(),
		db:    database,
		lock:  lock,
		keep:  keep,
	}, nil
}

// Event records a daemon event for this run.
func (j *Journal) Event(eventType string, pid int, details string) {
	if err := j.db.LogDaemonEvent(j.RunID, eventType, pid, details); err != nil {
		slog.Warn("Failed to record daemon event", "event", eventType, "error", err)
	}
}

// Heartbeat records a tick for this run.
func (j *Journal) Heartbeat(counter int32) {
	if err := j.db.LogHeartbeat(j.RunID, counter, j.keep); err != nil {
		slog.Warn("Failed to record heartbeat", "counter", counter, "error", err)
	}
}

// Close flushes and closes the database, then releases the lock.
func (j *Journal) Close() error {
	if err := j.db.Flush(); err != nil {
		slog.Warn("Failed to flush journal", "error", err)
	}
	err := j.db.Close()
	if unlockErr := j.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}
